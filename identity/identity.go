// Package identity implements the canonical encoding of contributor
// identities and the signature bindings layered on top of a contribution:
// the BLS signature over the canonical identity bytes, and the outer
// EIP-712 ECDSA binding used by Ethereum-identified contributors.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant of an Identity.
type Kind int

const (
	KindNone Kind = iota
	KindEthereum
	KindGitHub
)

var (
	ErrUnknownTag          = errors.New("identity: unknown tag")
	ErrWrongSeparatorCount = errors.New("identity: wrong separator count")
	ErrInvalidEthereumAddr = errors.New("identity: invalid ethereum address")
	ErrInvalidGitHubID     = errors.New("identity: non-integer github id")
	ErrEmptyGitHubUsername = errors.New("identity: empty github username")
)

// Identity is a tagged variant: None, Ethereum{address}, or
// GitHub{id, username}. The zero value is None.
type Identity struct {
	kind     Kind
	address  [20]byte
	githubID uint64
	username string
}

// None returns the unauthenticated identity.
func None() Identity {
	return Identity{kind: KindNone}
}

// Ethereum constructs an Ethereum-identified identity from a 20-byte address.
func Ethereum(address [20]byte) Identity {
	return Identity{kind: KindEthereum, address: address}
}

// GitHub constructs a GitHub-identified identity.
func GitHub(id uint64, username string) Identity {
	return Identity{kind: KindGitHub, githubID: id, username: username}
}

func (i Identity) Kind() Kind { return i.kind }

func (i Identity) EthereumAddress() ([20]byte, bool) {
	return i.address, i.kind == KindEthereum
}

func (i Identity) GitHubID() (uint64, string, bool) {
	return i.githubID, i.username, i.kind == KindGitHub
}

// Canonical returns the total, stable string encoding used as the
// BLS-signed message and the storage-layer unique key.
func (i Identity) Canonical() string {
	switch i.kind {
	case KindNone:
		return ""
	case KindEthereum:
		return fmt.Sprintf("eth|0x%x", i.address)
	case KindGitHub:
		return fmt.Sprintf("git|%d|%s", i.githubID, i.username)
	default:
		return ""
	}
}

// CanonicalBytes returns the ASCII bytes of Canonical, the exact message
// signed by the contribution's BLS signature.
func (i Identity) CanonicalBytes() []byte {
	return []byte(i.Canonical())
}

// UniqueIdentifier is what the de-duplication log keys on: identical to the
// canonical string, kept as a distinct accessor so callers express intent.
func (i Identity) UniqueIdentifier() string {
	return i.Canonical()
}

// Parse decodes a canonical identity string, failing strictly: wrong
// separator count, unknown tag, malformed hex, or a non-integer GitHub id
// each fail with a distinct error. Parse is total on valid identities and
// Parse(Parse(s).Canonical()) == Parse(s) whenever Parse(s) succeeds.
func Parse(s string) (Identity, error) {
	if s == "" {
		return None(), nil
	}

	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return Identity{}, ErrWrongSeparatorCount
	}

	switch parts[0] {
	case "eth":
		return parseEthereum(parts[1])
	case "git":
		return parseGitHub(parts[1])
	default:
		return Identity{}, ErrUnknownTag
	}
}

func parseEthereum(rest string) (Identity, error) {
	if !strings.HasPrefix(rest, "0x") {
		return Identity{}, ErrInvalidEthereumAddr
	}
	hexPart := rest[2:]
	if len(hexPart) != 40 {
		return Identity{}, ErrInvalidEthereumAddr
	}
	var addr [20]byte
	for i := 0; i < 20; i++ {
		b, err := decodeHexByte(hexPart[i*2 : i*2+2])
		if err != nil {
			return Identity{}, ErrInvalidEthereumAddr
		}
		addr[i] = b
	}
	return Ethereum(addr), nil
}

func decodeHexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func parseGitHub(rest string) (Identity, error) {
	parts := strings.SplitN(rest, "|", 2)
	if len(parts) != 2 {
		return Identity{}, ErrWrongSeparatorCount
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidGitHubID
	}
	if parts[1] == "" {
		return Identity{}, ErrEmptyGitHubUsername
	}
	return GitHub(id, parts[1]), nil
}
