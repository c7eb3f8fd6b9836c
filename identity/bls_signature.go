package identity

import (
	"encoding/hex"
	"strings"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// BlsSignature is an optional G1 point: present when a contribution has
// been signed, absent ("") when unsigned or pruned.
type BlsSignature struct {
	point   bls12381.G1Affine
	present bool
}

func NoBlsSignature() BlsSignature {
	return BlsSignature{}
}

func NewBlsSignature(point bls12381.G1Affine) BlsSignature {
	return BlsSignature{point: point, present: true}
}

func (s BlsSignature) Present() bool                    { return s.present }
func (s BlsSignature) Point() (bls12381.G1Affine, bool) { return s.point, s.present }

// MarshalText encodes as 0x-prefixed compressed G1 hex, or "" when absent.
func (s BlsSignature) MarshalText() ([]byte, error) {
	if !s.present {
		return []byte(""), nil
	}
	b := s.point.Bytes()
	return []byte("0x" + hex.EncodeToString(b[:])), nil
}

// UnmarshalText decodes the wire form produced by MarshalText.
func (s *BlsSignature) UnmarshalText(text []byte) error {
	str := string(text)
	if str == "" {
		*s = BlsSignature{}
		return nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return err
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(raw); err != nil {
		return err
	}
	*s = BlsSignature{point: p, present: true}
	return nil
}

// Prune clears the signature in place if it fails to verify msg under
// pubkey, without otherwise signalling failure: per spec, pruning a
// contribution's signature never invalidates the contribution itself.
// verify is injected so this package does not import bls directly (avoids
// a cross-package cycle risk and keeps the pairing check colocated with the
// rest of the engine).
func (s *BlsSignature) Prune(verify func(sig bls12381.G1Affine, msg []byte, pk bls12381.G2Affine) (bool, error), msg []byte, pk bls12381.G2Affine) {
	if !s.present {
		return
	}
	ok, err := verify(s.point, msg, pk)
	if err != nil || !ok {
		*s = BlsSignature{}
	}
}
