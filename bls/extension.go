package bls

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// VerifyExtension checks that newG1One (the new g1[1] of a sub-ceremony) is
// a valid single-contributor extension of oldG1One under the same secret
// that moved oldPotPubkey to newPotPubkey — i.e. there exists tau such that
// newG1One = tau*oldG1One and newPotPubkey = tau*oldPotPubkey — WITHOUT ever
// computing tau or a tau*G2::one() point, via the cross-pairing identity
// e(newG1One, oldPotPubkey) == e(oldG1One, newPotPubkey).
func VerifyExtension(oldG1One, newG1One bls12381.G1Affine, oldPotPubkey, newPotPubkey bls12381.G2Affine) (bool, error) {
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{newG1One, negateG1(oldG1One)},
		[]bls12381.G2Affine{oldPotPubkey, newPotPubkey},
	)
}

// VerifySignatureDelta checks a BLS signature against the implicit delta
// public key tau*G2::one() without materializing it, via
// e(sig, oldPotPubkey) == e(H(msg), newPotPubkey). When oldPotPubkey is
// G2::one() (the genesis case) this reduces exactly to VerifySignature.
func VerifySignatureDelta(sig bls12381.G1Affine, msg []byte, oldPotPubkey, newPotPubkey bls12381.G2Affine) (bool, error) {
	if err := ValidateG1([]bls12381.G1Affine{sig}); err != nil {
		return false, err
	}
	h, err := bls12381.HashToG1(msg, signingDST)
	if err != nil {
		return false, err
	}
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{sig, negateG1(h)},
		[]bls12381.G2Affine{oldPotPubkey, newPotPubkey},
	)
}
