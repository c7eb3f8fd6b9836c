package store

import (
	"testing"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/contribution"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbm.NewMemDB()
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestInsertContributorIdempotentOrFail(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertContributor("eth|0xabc"))
	err := s.InsertContributor("eth|0xabc")
	require.ErrorIs(t, err, ErrAlreadyContributed)

	has, err := s.HasContributed("eth|0xabc")
	require.NoError(t, err)
	require.True(t, has)

	has, err = s.HasContributed("eth|0xdef")
	require.NoError(t, err)
	require.False(t, has)
}

func TestLoadTranscriptEmptyIsNotOK(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.LoadTranscript()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAppendAndLoadTranscriptRoundTrip(t *testing.T) {
	s := newTestStore(t)

	c := contribution.NewEntropyFree(2, 2)
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i + 2)
	}
	tau, err := bls.GenerateTau(entropy)
	require.NoError(t, err)
	require.NoError(t, c.AddTau(tau, identity.None()))

	batch := transcript.BatchContribution{Contributions: []contribution.Contribution{c}}
	require.NoError(t, s.AppendTranscript(batch, identity.None().Canonical()))

	loaded, ok, err := s.LoadTranscript()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded.Contributions, 1)
	require.True(t, loaded.Contributions[0].HasEntropy())
}
