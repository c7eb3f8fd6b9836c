package bls

import "errors"

var (
	ErrInvalidG1Power   = errors.New("bls: g1 point not a valid subgroup element")
	ErrInvalidG2Power   = errors.New("bls: g2 point not a valid subgroup element")
	ErrPointAtInfinity  = errors.New("bls: point at infinity not allowed")
	ErrEmptyPowers      = errors.New("bls: powers sequence is empty")
	ErrPubkeyMismatch   = errors.New("bls: pot_pubkey does not match powers sequence")
	ErrSequenceMismatch = errors.New("bls: powers are not a consistent geometric sequence")
	ErrInvalidEntropy   = errors.New("bls: entropy must be at least 64 bytes")
	ErrZeroTau          = errors.New("bls: derived tau reduced to zero")
	ErrInvalidSignature = errors.New("bls: signature verification failed")
	ErrOversizeDST      = errors.New("bls: domain separation tag exceeds 255 bytes even after hashing")
)
