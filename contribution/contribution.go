// Package contribution implements the single Contribution object: a typed
// container of G1/G2 powers-of-tau plus the running PoT public key and a
// BLS signature binding the contributor's identity to the update.
package contribution

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

// Powers holds the two power sequences of one sub-ceremony. n1 >= n2 >= 2.
type Powers struct {
	G1 []bls12381.G1Affine
	G2 []bls12381.G2Affine
}

// NewEntropyFreePowers returns [G1::one() x n1], [G2::one() x n2] — the
// starting point of a sub-ceremony before any contributor has participated.
func NewEntropyFreePowers(n1, n2 int) Powers {
	g1 := make([]bls12381.G1Affine, n1)
	g2 := make([]bls12381.G2Affine, n2)
	for i := range g1 {
		g1[i] = bls.G1One()
	}
	for i := range g2 {
		g2[i] = bls.G2One()
	}
	return Powers{G1: g1, G2: g2}
}

// Contribution is one sub-ceremony's current state: powers, the PoT public
// key x*G2::one() for the running product x, and the BLS signature over the
// contributor's canonical identity bytes.
type Contribution struct {
	Powers       Powers
	PotPubkey    bls12381.G2Affine
	BlsSignature identity.BlsSignature
}

// NewEntropyFree builds the genesis Contribution for one sub-ceremony:
// pot_pubkey == G2::one(), unsigned.
func NewEntropyFree(n1, n2 int) Contribution {
	return Contribution{
		Powers:       NewEntropyFreePowers(n1, n2),
		PotPubkey:    bls.G2One(),
		BlsSignature: identity.NoBlsSignature(),
	}
}

// HasEntropy is true iff a contributor has already injected randomness,
// i.e. pot_pubkey != G2::one().
func (c Contribution) HasEntropy() bool {
	one := bls.G2One()
	return !c.PotPubkey.Equal(&one)
}

// AddTau applies the contributor's secret tau. This is the contributor's
// critical-path update: it deliberately skips subgroup re-validation
// (deferred to Validate) to keep the client-side hot path cheap.
func (c *Contribution) AddTau(tau fr.Element, id identity.Identity) error {
	bls.AddTauG1(tau, c.Powers.G1)
	bls.AddTauG2(tau, c.Powers.G2)

	var bi big.Int
	tau.BigInt(&bi)
	c.PotPubkey.ScalarMultiplication(&c.PotPubkey, &bi)

	sig, err := bls.SignMessage(tau, id.CanonicalBytes())
	if err != nil {
		return err
	}
	c.BlsSignature = identity.NewBlsSignature(sig)
	return nil
}

// Validate runs validate_g1(g1); validate_g2(g2); validate_g2([pot_pubkey])
// in order, aborting with the first detected error.
func (c Contribution) Validate() error {
	if err := bls.ValidateG1(c.Powers.G1); err != nil {
		return err
	}
	if err := bls.ValidateG2(c.Powers.G2); err != nil {
		return err
	}
	if err := bls.ValidateG2([]bls12381.G2Affine{c.PotPubkey}); err != nil {
		return err
	}
	return nil
}
