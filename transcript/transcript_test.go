package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

func sizes() [][2]int {
	return [][2]int{{4, 2}, {8, 2}}
}

func entropyFor(seed byte) []byte {
	e := make([]byte, 64)
	for i := range e {
		e[i] = seed + byte(i)
	}
	return e
}

func TestAppendGenesisContribution(t *testing.T) {
	tr := NewGenesis(sizes())
	batch := tr.Snapshot()

	id := identity.None()
	for k := range batch.Contributions {
		tau, err := bls.GenerateTau(entropyFor(byte(k + 1)))
		require.NoError(t, err)
		require.NoError(t, batch.Contributions[k].AddTau(tau, id))
	}

	entries := BuildPotPubkeyEntries(batch)
	require.NoError(t, tr.Append(&batch, id, entries))
	require.Equal(t, 1, tr.WitnessLength(0))

	second := tr.Snapshot()
	for k := range second.Contributions {
		require.True(t, second.Contributions[k].HasEntropy())
	}
}

func TestAppendRejectsSizeMismatch(t *testing.T) {
	tr := NewGenesis(sizes())
	batch := tr.Snapshot()
	batch.Contributions = batch.Contributions[:1]

	err := tr.Append(&batch, identity.None(), nil)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestAppendRejectsWrongSignature(t *testing.T) {
	tr := NewGenesis(sizes())
	batch := tr.Snapshot()

	id := identity.None()
	otherID := identity.GitHub(1, "someone-else")
	for k := range batch.Contributions {
		tau, err := bls.GenerateTau(entropyFor(byte(k + 5)))
		require.NoError(t, err)
		// Sign with the wrong identity so the delta check fails.
		require.NoError(t, batch.Contributions[k].AddTau(tau, otherID))
	}

	err := tr.Append(&batch, id, nil)
	require.Error(t, err)
}

func TestAppendRejectsCorruptedHigherPower(t *testing.T) {
	tr := NewGenesis(sizes())
	batch := tr.Snapshot()

	id := identity.None()
	for k := range batch.Contributions {
		tau, err := bls.GenerateTau(entropyFor(byte(k + 20)))
		require.NoError(t, err)
		require.NoError(t, batch.Contributions[k].AddTau(tau, id))
	}

	// The g1[1]/pot_pubkey delta is untouched, so the extension and
	// signature checks alone would accept this batch. Doubling g1[2] keeps
	// it a valid curve point (Validate passes) but breaks the geometric
	// progression, which only VerifyPubkeys checks.
	g1Two := batch.Contributions[0].Powers.G1[2]
	g1Two.Add(&g1Two, &g1Two)
	batch.Contributions[0].Powers.G1[2] = g1Two

	err := tr.Append(&batch, id, BuildPotPubkeyEntries(batch))
	require.Error(t, err)
}

func TestAppendTwiceAccumulatesWitness(t *testing.T) {
	tr := NewGenesis(sizes())

	for i := 0; i < 2; i++ {
		batch := tr.Snapshot()
		id := identity.GitHub(uint64(i), "contributor")
		for k := range batch.Contributions {
			tau, err := bls.GenerateTau(entropyFor(byte(i*10 + k + 1)))
			require.NoError(t, err)
			require.NoError(t, batch.Contributions[k].AddTau(tau, id))
		}
		require.NoError(t, tr.Append(&batch, id, BuildPotPubkeyEntries(batch)))
	}

	require.Equal(t, 2, tr.WitnessLength(0))
	require.Equal(t, 2, tr.WitnessLength(1))
}
