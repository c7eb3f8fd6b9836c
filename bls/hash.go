package bls

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// maxDSTLength is the RFC 9380 ceiling on a raw domain separation tag; tags
// longer than this are themselves hashed down per section 5.3.3.
const maxDSTLength = 255

const longDSTPrefix = "H2C-OVERSIZE-DST-"

// ExpandMessageXMD implements the expand_message_xmd construction of
// RFC 9380 section 5.4.1 against SHA-256, producing lenInBytes pseudorandom
// bytes from msg under the given domain separation tag.
func ExpandMessageXMD(msg, dst []byte, lenInBytes int) ([]byte, error) {
	const bInBytes = sha256.Size // b_in_bytes, output size of the hash
	const sInBytes = 64          // s_in_bytes, SHA-256 block size

	dst, err := normalizeDST(dst)
	if err != nil {
		return nil, err
	}

	ell := (lenInBytes + bInBytes - 1) / bInBytes
	if ell > 255 {
		return nil, fmt.Errorf("bls: expand_message_xmd: ell=%d exceeds 255", ell)
	}

	dstPrime := dstPrime(dst)
	zPad := make([]byte, sInBytes)
	lenStr := make([]byte, 2)
	binary.BigEndian.PutUint16(lenStr, uint16(lenInBytes))

	// b_0 = H(Z_pad || msg || l_i_b_str || 0x00 || DST_prime)
	h0 := sha256.New()
	h0.Write(zPad)
	h0.Write(msg)
	h0.Write(lenStr)
	h0.Write([]byte{0})
	h0.Write(dstPrime)
	b0 := h0.Sum(nil)

	// b_1 = H(b_0 || 0x01 || DST_prime)
	h1 := sha256.New()
	h1.Write(b0)
	h1.Write([]byte{1})
	h1.Write(dstPrime)
	bi := h1.Sum(nil)

	out := make([]byte, 0, ell*bInBytes)
	out = append(out, bi...)

	for i := 2; i <= ell; i++ {
		xored := make([]byte, bInBytes)
		for j := range xored {
			xored[j] = b0[j] ^ bi[j]
		}
		hi := sha256.New()
		hi.Write(xored)
		hi.Write([]byte{byte(i)})
		hi.Write(dstPrime)
		bi = hi.Sum(nil)
		out = append(out, bi...)
	}

	return out[:lenInBytes], nil
}

// normalizeDST applies the RFC 9380 5.3.3 oversize-DST fallback: tags over
// 255 bytes are replaced by H("H2C-OVERSIZE-DST-" || dst).
func normalizeDST(dst []byte) ([]byte, error) {
	if len(dst) <= maxDSTLength {
		return dst, nil
	}
	h := sha256.New()
	h.Write([]byte(longDSTPrefix))
	h.Write(dst)
	reduced := h.Sum(nil)
	if len(reduced) > maxDSTLength {
		return nil, ErrOversizeDST
	}
	return reduced, nil
}

func dstPrime(dst []byte) []byte {
	out := make([]byte, 0, len(dst)+1)
	out = append(out, dst...)
	out = append(out, byte(len(dst)))
	return out
}
