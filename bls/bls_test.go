package bls

import (
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

// TestExpandMessageXMDDeterministic expands the same message under the same
// DST and length twice and checks the two outputs agree bit-for-bit and have
// the requested length; it does not compare against a published vector.
func TestExpandMessageXMDDeterministic(t *testing.T) {
	msg := []byte("abc")
	dst := []byte("QUUX-V01-CS02-with-expander-SHA256-128")

	out1, err := ExpandMessageXMD(msg, dst, 32)
	require.NoError(t, err)
	out2, err := ExpandMessageXMD(msg, dst, 32)
	require.NoError(t, err)
	require.Equal(t, out1, out2)
	require.Len(t, out1, 32)
}

func TestExpandMessageXMDOversizeDST(t *testing.T) {
	msg := []byte("msg")
	longDST := make([]byte, 300)
	for i := range longDST {
		longDST[i] = byte(i)
	}
	out, err := ExpandMessageXMD(msg, longDST, 16)
	require.NoError(t, err)
	require.Len(t, out, 16)
}

func TestGenerateTauRejectsShortEntropy(t *testing.T) {
	_, err := GenerateTau(make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestGenerateTauIsDeterministicAndNonZero(t *testing.T) {
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i * 7)
	}
	tau1, err := GenerateTau(entropy)
	require.NoError(t, err)
	require.False(t, tau1.IsZero())

	tau2, err := GenerateTau(entropy)
	require.NoError(t, err)
	require.Equal(t, tau1, tau2)

	entropy[0] ^= 0xFF
	tau3, err := GenerateTau(entropy)
	require.NoError(t, err)
	require.NotEqual(t, tau1, tau3)
}

func buildPowers(t *testing.T, tau fr.Element, n1, n2 int) ([]bls12381.G1Affine, []bls12381.G2Affine, bls12381.G2Affine) {
	t.Helper()
	g1 := make([]bls12381.G1Affine, n1)
	g2 := make([]bls12381.G2Affine, n2)
	for i := range g1 {
		g1[i] = G1One()
	}
	for i := range g2 {
		g2[i] = G2One()
	}
	AddTauG1(tau, g1)
	AddTauG2(tau, g2)

	var potPubkey bls12381.G2Affine
	potPubkey = G2One()
	scalarMulG2(&potPubkey, &tau)
	return g1, g2, potPubkey
}

func TestAddTauAndValidateRoundtrip(t *testing.T) {
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i + 1)
	}
	tau, err := GenerateTau(entropy)
	require.NoError(t, err)

	g1, g2, potPubkey := buildPowers(t, tau, 4, 2)

	require.NoError(t, ValidateG1(g1))
	require.NoError(t, ValidateG2(g2))
	require.NoError(t, VerifyPubkeys(g1, g2, potPubkey))
}

func TestVerifyPubkeysRejectsInconsistentSequence(t *testing.T) {
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i + 3)
	}
	tau, err := GenerateTau(entropy)
	require.NoError(t, err)
	g1, g2, potPubkey := buildPowers(t, tau, 4, 2)

	// Corrupt one G1 power so the geometric progression breaks.
	g1[2].Add(&g1[2], &g1[2])

	err = VerifyPubkeys(g1, g2, potPubkey)
	require.Error(t, err)
}

func TestSignAndVerifyMessage(t *testing.T) {
	entropy := make([]byte, 64)
	for i := range entropy {
		entropy[i] = byte(i * 3)
	}
	tau, err := GenerateTau(entropy)
	require.NoError(t, err)

	var pubkey bls12381.G2Affine
	pubkey = G2One()
	scalarMulG2(&pubkey, &tau)

	msg := []byte("contribution-12")
	sig, err := SignMessage(tau, msg)
	require.NoError(t, err)

	ok, err := VerifySignature(sig, msg, pubkey)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifySignature(sig, []byte("different message"), pubkey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeEncodeG1Roundtrip(t *testing.T) {
	g1 := G1One()
	encoded := EncodeG1Hex(g1)
	decoded, err := DecodeG1Hex(encoded)
	require.NoError(t, err)
	require.True(t, g1.Equal(&decoded))
}

func TestDecodeG1RejectsGarbage(t *testing.T) {
	_, err := DecodeG1Hex("0xdeadbeef")
	require.Error(t, err)
}
