package bls

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"
)

// tauDST is the expand_message_xmd domain separation tag used to turn
// contributor-supplied entropy into a scalar field element. Distinct from
// the signing DST so the two hash-to-something uses can never collide.
var tauDST = []byte("KZG-CEREMONY-SEQUENCER-TAU-DERIVATION-V1")

// fieldBytes is the number of bytes of uniform randomness fed to
// fr.Element.SetBytes; 48 bytes (384 bits) gives a bias negligible relative
// to the ~255-bit field order per the usual oversampling margin.
const fieldBytes = 48

// GenerateTau derives a non-zero scalar field element deterministically from
// raw entropy. Entropy must be at least 64 bytes, matching the teacher's
// utils.GetRandom sizing for key material and mpc_ceremony.go's blake2b-based
// derivation.
func GenerateTau(entropy []byte) (fr.Element, error) {
	var tau fr.Element
	if len(entropy) < 64 {
		return tau, ErrInvalidEntropy
	}

	// Pass entropy through blake2b-512 first so low-quality or short-looking
	// client randomness is whitened before expansion, mirroring
	// mpc_ceremony.go's blake2b.New512(randomness) step.
	digest := blake2b.Sum512(entropy)

	counter := byte(0)
	for {
		msg := append(append([]byte{}, digest[:]...), counter)
		expanded, err := ExpandMessageXMD(msg, tauDST, fieldBytes)
		if err != nil {
			return tau, err
		}
		tau.SetBytes(expanded)
		if !tau.IsZero() {
			return tau, nil
		}
		counter++
		if counter == 0 {
			// astronomically unreachable: SetBytes mod r landed on 0 for
			// all 256 counter values
			return tau, ErrZeroTau
		}
	}
}
