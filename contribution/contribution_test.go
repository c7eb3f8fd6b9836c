package contribution

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

func TestEntropyFreeHasNoEntropy(t *testing.T) {
	c := NewEntropyFree(4, 2)
	require.False(t, c.HasEntropy())
	require.NoError(t, c.Validate())
}

func TestAddTauProducesEntropyAndValidates(t *testing.T) {
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i + 11)
	}
	tau, err := bls.GenerateTau(entropy)
	require.NoError(t, err)

	c := NewEntropyFree(4, 2)
	require.NoError(t, c.AddTau(tau, identity.None()))

	require.True(t, c.HasEntropy())
	require.NoError(t, c.Validate())
	require.True(t, c.BlsSignature.Present())
}

func TestContributionJSONRoundTrip(t *testing.T) {
	c := NewEntropyFree(2, 4)
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.EqualValues(t, 2, parsed["numG1Powers"])
	require.EqualValues(t, 4, parsed["numG2Powers"])
	require.Equal(t, "", parsed["blsSignature"])

	var roundTripped Contribution
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	require.NoError(t, roundTripped.Validate())
	require.Equal(t, c.Powers.G1, roundTripped.Powers.G1)
	require.Equal(t, c.Powers.G2, roundTripped.Powers.G2)
	require.Equal(t, c.PotPubkey, roundTripped.PotPubkey)
}
