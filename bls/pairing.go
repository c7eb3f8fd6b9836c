package bls

import (
	"crypto/rand"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// G1One and G2One return the curve's fixed generators, matching the
// bls12381.Generators() call pattern used directly in
// kysee-zk-chains/types/verify_bls_aggr_test.go.
func G1One() bls12381.G1Affine {
	_, _, g1, _ := bls12381.Generators()
	return g1
}

func G2One() bls12381.G2Affine {
	_, _, _, g2 := bls12381.Generators()
	return g2
}

// VerifyPubkeys checks that g1Powers and g2Powers form a single consistent
// geometric sequence under one secret tau, and that potPubkey = tau * G2::one().
//
// Rather than performing one pairing per adjacent pair (2*(n-1) pairings for
// a sequence of length n), it collapses each sequence's progression check
// into a single randomized linear combination verified by one multi-pairing
// call via bls12381.PairingCheck, the same batching strategy
// mpc_ceremony.go's VerifyContribution applies per-pair with
// subtle.ConstantTimeCompare over marshaled GT elements.
func VerifyPubkeys(g1Powers []bls12381.G1Affine, g2Powers []bls12381.G2Affine, potPubkey bls12381.G2Affine) error {
	if len(g1Powers) == 0 || len(g2Powers) == 0 {
		return ErrEmptyPowers
	}

	g1one := G1One()
	g2one := G2One()

	// potPubkey must equal tau * G2::one(), cross-checked against g1[1] (=
	// tau * G1::one()) via e(g1[1], G2::one()) == e(G1::one(), potPubkey).
	if len(g1Powers) > 1 {
		ok, err := bls12381.PairingCheck(
			[]bls12381.G1Affine{g1Powers[1], negateG1(g1one)},
			[]bls12381.G2Affine{g2one, potPubkey},
		)
		if err != nil {
			return fmt.Errorf("verify_pubkeys: pot_pubkey cross-check: %w", err)
		}
		if !ok {
			return ErrPubkeyMismatch
		}
	}

	// g2 sequence must agree with g1 on the same tau:
	// e(g1[1], g2[i]) == e(g1[0], g2[i+1]) for all i.
	if len(g2Powers) > 1 {
		if err := verifySequence(g1Powers[1], g1Powers[0], g2Powers); err != nil {
			return fmt.Errorf("verify_pubkeys: g2 sequence: %w", err)
		}
	}

	// g1 sequence must be a geometric progression under the same tau:
	// e(g1[i], g2[1]) == e(g1[i+1], g2[0]) for all i, batched via random
	// linear combination across i.
	if len(g1Powers) > 2 && len(g2Powers) > 1 {
		if err := verifyG1Progression(g1Powers, g2Powers[0], g2Powers[1]); err != nil {
			return fmt.Errorf("verify_pubkeys: g1 sequence: %w", err)
		}
	}

	return nil
}

// verifySequence checks e(g1a, g2Powers[i]) == e(g1b, g2Powers[i+1]) for all
// adjacent pairs in g2Powers, batched by a random linear combination of the
// G2 side (pairings are bilinear in either argument, so combining on G2 is
// equally valid and lets us keep a single fixed G1 pair).
func verifySequence(g1a, g1b bls12381.G1Affine, g2Powers []bls12381.G2Affine) error {
	n := len(g2Powers) - 1
	coeffs, err := randomScalars(n)
	if err != nil {
		return err
	}

	lhs, err := combineG2(g2Powers[:n], coeffs)
	if err != nil {
		return err
	}
	rhs, err := combineG2(g2Powers[1:], coeffs)
	if err != nil {
		return err
	}

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{g1a, negateG1(g1b)},
		[]bls12381.G2Affine{lhs, rhs},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSequenceMismatch
	}
	return nil
}

// verifyG1Progression checks e(g1[i], g2one1) == e(g1[i+1], g2one0) across
// every adjacent pair in g1Powers, batched by a random linear combination of
// the G1 side.
func verifyG1Progression(g1Powers []bls12381.G1Affine, g2one0, g2one1 bls12381.G2Affine) error {
	n := len(g1Powers) - 1
	coeffs, err := randomScalars(n)
	if err != nil {
		return err
	}

	lhs, err := combineG1(g1Powers[:n], coeffs)
	if err != nil {
		return err
	}
	rhs, err := combineG1(g1Powers[1:], coeffs)
	if err != nil {
		return err
	}

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhs, negateG1(rhs)},
		[]bls12381.G2Affine{g2one1, g2one0},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSequenceMismatch
	}
	return nil
}

func randomScalars(n int) ([]fr.Element, error) {
	out := make([]fr.Element, n)
	for i := range out {
		buf := make([]byte, fieldBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("random scalar: %w", err)
		}
		out[i].SetBytes(buf)
	}
	return out, nil
}

func combineG1(points []bls12381.G1Affine, coeffs []fr.Element) (bls12381.G1Affine, error) {
	var acc bls12381.G1Jac
	acc.FromAffine(&bls12381.G1Affine{})
	for i, c := range coeffs {
		var term bls12381.G1Affine
		term.Set(&points[i])
		scalarMulG1(&term, &c)
		var termJac bls12381.G1Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var result bls12381.G1Affine
	result.FromJacobian(&acc)
	return result, nil
}

func combineG2(points []bls12381.G2Affine, coeffs []fr.Element) (bls12381.G2Affine, error) {
	var acc bls12381.G2Jac
	acc.FromAffine(&bls12381.G2Affine{})
	for i, c := range coeffs {
		var term bls12381.G2Affine
		term.Set(&points[i])
		scalarMulG2(&term, &c)
		var termJac bls12381.G2Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var result bls12381.G2Affine
	result.FromJacobian(&acc)
	return result, nil
}

func negateG1(p bls12381.G1Affine) bls12381.G1Affine {
	var neg bls12381.G1Affine
	neg.Neg(&p)
	return neg
}
