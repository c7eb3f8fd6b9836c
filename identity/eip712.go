package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// PotPubkeyEntry is one element of the PoTPubkeys EIP-712 array, one per
// sub-ceremony in the batch.
type PotPubkeyEntry struct {
	NumG1Powers uint64
	NumG2Powers uint64
	PotPubkey   string // 0x-prefixed compressed G2 hex, matches the wire field
}

// EcdsaSignature is the 65-byte (r, s, v) signature serialized as
// 0x-prefixed hex, matching the wire format of spec §4.4.
type EcdsaSignature struct {
	present bool
	r, s    [32]byte
	v       byte
}

func NoEcdsaSignature() EcdsaSignature { return EcdsaSignature{} }

func (e EcdsaSignature) Present() bool { return e.present }

func (e EcdsaSignature) MarshalText() ([]byte, error) {
	if !e.present {
		return []byte(""), nil
	}
	buf := make([]byte, 0, 65)
	buf = append(buf, e.r[:]...)
	buf = append(buf, e.s[:]...)
	buf = append(buf, e.v)
	return []byte("0x" + hex.EncodeToString(buf)), nil
}

func (e *EcdsaSignature) UnmarshalText(text []byte) error {
	str := string(text)
	if str == "" {
		*e = EcdsaSignature{}
		return nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return err
	}
	if len(raw) != 65 {
		return fmt.Errorf("identity: ecdsa signature must be 65 bytes, got %d", len(raw))
	}
	var sig EcdsaSignature
	copy(sig.r[:], raw[0:32])
	copy(sig.s[:], raw[32:64])
	sig.v = raw[64]
	sig.present = true
	*e = sig
	return nil
}

func (e EcdsaSignature) bytes65() []byte {
	buf := make([]byte, 65)
	copy(buf[0:32], e.r[:])
	copy(buf[32:64], e.s[:])
	buf[64] = e.v
	return buf
}

// potPubkeysTypedData builds the EIP-712 typed data for the PoTPubkeys
// struct over the given sub-ceremony entries, domain {name: "Ethereum KZG
// Ceremony", version: "1.0", chainId: 1} per spec §4.3/§6. The inner struct
// name (contributionPubkey) and potPubkey's wire type (bytes, not string)
// must match the ground-truth signer exactly: EIP-712 folds both the
// struct name and each member's type into encodeType/typeHash, so any
// divergence here produces a digest no spec-compliant wallet signature
// will ever recover to the signer's address.
func potPubkeysTypedData(entries []PotPubkeyEntry) (apitypes.TypedData, error) {
	potPubkeys := make([]interface{}, len(entries))
	for i, e := range entries {
		potPubkeyBytes, err := hex.DecodeString(strings.TrimPrefix(e.PotPubkey, "0x"))
		if err != nil {
			return apitypes.TypedData{}, fmt.Errorf("identity: decoding pot_pubkey: %w", err)
		}
		potPubkeys[i] = map[string]interface{}{
			"numG1Powers": fmt.Sprintf("%d", e.NumG1Powers),
			"numG2Powers": fmt.Sprintf("%d", e.NumG2Powers),
			"potPubkey":   potPubkeyBytes,
		}
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"contributionPubkey": []apitypes.Type{
				{Name: "numG1Powers", Type: "uint256"},
				{Name: "numG2Powers", Type: "uint256"},
				{Name: "potPubkey", Type: "bytes"},
			},
			"PoTPubkeys": []apitypes.Type{
				{Name: "potPubkeys", Type: "contributionPubkey[]"},
			},
		},
		PrimaryType: "PoTPubkeys",
		Domain: apitypes.TypedDataDomain{
			Name:    "Ethereum KZG Ceremony",
			Version: "1.0",
			ChainId: (*math.HexOrDecimal256)(big.NewInt(1)),
		},
		Message: apitypes.TypedDataMessage{
			"potPubkeys": potPubkeys,
		},
	}, nil
}

var errBindingMismatch = errors.New("identity: eip712 signature does not bind to address")

// VerifyBatchBinding checks that sig is a valid EIP-712 signature over the
// PoTPubkeys struct built from entries, recovered to address. Per spec
// §4.3's prune policy, callers must NOT reject the batch on a false
// return — instead the ECDSA field is cleared and the contribution kept.
func VerifyBatchBinding(entries []PotPubkeyEntry, sig EcdsaSignature, address [20]byte) (bool, error) {
	if !sig.present {
		return false, nil
	}

	typedData, err := potPubkeysTypedData(entries)
	if err != nil {
		return false, err
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return false, fmt.Errorf("eip712 domain hash: %w", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return false, fmt.Errorf("eip712 message hash: %w", err)
	}

	rawData := append([]byte("\x19\x01"), append(domainSeparator, messageHash...)...)
	digest := crypto.Keccak256(rawData)

	rawSig := sig.bytes65()
	v := rawSig[64]
	if v >= 27 {
		v -= 27
	}
	recoverable := append(append([]byte{}, rawSig[:64]...), v)

	pubkey, err := crypto.SigToPub(digest, recoverable)
	if err != nil {
		return false, nil //nolint:nilerr // malformed signature is a verification failure, not an error
	}

	recovered := crypto.PubkeyToAddress(*pubkey)
	if recovered != (common.Address)(address) {
		return false, nil
	}
	return true, nil
}
