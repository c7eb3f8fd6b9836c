package lobby

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
)

var errAlreadyContributedFake = errors.New("fake: already contributed")

type fakeStore struct {
	contributed map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{contributed: make(map[string]bool)}
}

func (f *fakeStore) HasContributed(uid string) (bool, error) {
	return f.contributed[uid], nil
}

func (f *fakeStore) InsertContributor(uid string) error {
	if f.contributed[uid] {
		return errAlreadyContributedFake
	}
	f.contributed[uid] = true
	return nil
}

func newTestLobby(capacity int, minCheckin, deadline time.Duration) (*Lobby, *transcript.Transcript) {
	tr := transcript.NewGenesis([][2]int{{4, 2}})
	l := New(capacity, minCheckin, deadline, tr, newFakeStore(), nil)
	return l, tr
}

func TestInsertSessionRespectsCapacity(t *testing.T) {
	l, _ := newTestLobby(1, 0, time.Minute)

	_, err := l.InsertSession(identity.None())
	require.NoError(t, err)

	_, err = l.InsertSession(identity.GitHub(1, "a"))
	require.ErrorIs(t, err, ErrSessionCountLimitExceeded)
}

func TestPromotionRace(t *testing.T) {
	l, _ := newTestLobby(4, 0, time.Minute)

	sidA, err := l.InsertSession(identity.GitHub(1, "a"))
	require.NoError(t, err)
	sidB, err := l.InsertSession(identity.GitHub(2, "b"))
	require.NoError(t, err)

	_, err = l.TryPromote(sidA)
	require.NoError(t, err)

	_, err = l.TryPromote(sidB)
	require.ErrorIs(t, err, ErrAnotherContributionInProgress)

	require.NoError(t, l.AbortContribution(sidA))

	_, err = l.TryPromote(sidB)
	require.NoError(t, err)
}

func TestRateLimiting(t *testing.T) {
	l, _ := newTestLobby(4, time.Hour, time.Minute)

	sid, err := l.InsertSession(identity.None())
	require.NoError(t, err)

	_, err = l.TryPromote(sid)
	require.NoError(t, err)

	// A rejected submission releases the slot but keeps the session
	// registered, so its next check-in falls under the rate limit.
	require.Error(t, l.Contribute(sid, transcript.BatchContribution{}))

	_, err = l.TryPromote(sid)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestDeadlineExpiry(t *testing.T) {
	l, _ := newTestLobby(4, 0, time.Millisecond)

	sidA, err := l.InsertSession(identity.GitHub(1, "a"))
	require.NoError(t, err)
	sidB, err := l.InsertSession(identity.GitHub(2, "b"))
	require.NoError(t, err)

	_, err = l.TryPromote(sidA)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	l.Tick()

	_, err = l.TryPromote(sidB)
	require.NoError(t, err)
}

func TestAbortRequiresActiveContributor(t *testing.T) {
	l, _ := newTestLobby(4, 0, time.Minute)

	sid, err := l.InsertSession(identity.None())
	require.NoError(t, err)

	err = l.AbortContribution(sid)
	require.ErrorIs(t, err, ErrNotActiveContributor)
}

func TestStatusReflectsOccupancy(t *testing.T) {
	l, _ := newTestLobby(4, 0, time.Minute)

	sid, err := l.InsertSession(identity.None())
	require.NoError(t, err)

	st := l.Status()
	require.Equal(t, 1, st.SessionCount)
	require.False(t, st.HasActiveSession)

	_, err = l.TryPromote(sid)
	require.NoError(t, err)

	st = l.Status()
	require.True(t, st.HasActiveSession)
	require.Equal(t, sid, st.ActiveSessionID)
}
