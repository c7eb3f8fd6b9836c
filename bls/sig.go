package bls

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// signingDST is the hash-to-curve domain separation tag for contribution
// signatures: minimal-signature-size scheme (pubkey in G2, signature in G1),
// no proof-of-possession since each contribution is signed individually
// rather than aggregated.
var signingDST = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_KZG_CEREMONY_NUL_")

// SignMessage signs msg with scalar tau, returning a G1 signature. Hash-to-
// curve delegates to gnark-crypto's bls12381.HashToG1, an RFC 9380
// implementation; this package's own ExpandMessageXMD is not used for
// signing (it only feeds GenerateTau).
func SignMessage(tau fr.Element, msg []byte) (bls12381.G1Affine, error) {
	h, err := bls12381.HashToG1(msg, signingDST)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	scalarMulG1(&h, &tau)
	return h, nil
}

// VerifySignature checks sig against msg under pubkey (a G2 point), via
// e(sig, G2::one()) == e(H(msg), pubkey).
func VerifySignature(sig bls12381.G1Affine, msg []byte, pubkey bls12381.G2Affine) (bool, error) {
	if err := ValidateG1([]bls12381.G1Affine{sig}); err != nil {
		return false, err
	}
	h, err := bls12381.HashToG1(msg, signingDST)
	if err != nil {
		return false, err
	}
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{sig, negateG1(h)},
		[]bls12381.G2Affine{G2One(), pubkey},
	)
}
