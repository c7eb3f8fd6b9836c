// Package utils holds small generic helpers shared across packages,
// trimmed down from the teacher's much larger AES/GHASH/OT-record toolkit
// to the handful of primitives that have a use outside the 2PC protocol:
// panics-on-violation assertions, CSPRNG byte generation, and a short
// random string generator.
package utils

import (
	"crypto/rand"
	mathrand "math/rand"
	"time"
)

// Assert panics if condition is false. Used for invariants that should be
// impossible to violate if the rest of the package is correct, never for
// validating external input.
func Assert(condition bool) {
	if !condition {
		panic("assert failed")
	}
}

// GetRandom returns size cryptographically random bytes.
func GetRandom(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// RandString returns a short random identifier, not cryptographically
// secure. Nothing in this module calls it; session ids use uuid.New and
// entropy uses GetRandom.
func RandString() string {
	r := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	b := make([]rune, 10)
	for i := range b {
		b[i] = letterRunes[r.Intn(len(letterRunes))]
	}
	return string(b)
}
