// Package transcript implements the batch+transcript component: the
// ordered per-sub-ceremony Contribution plus its witness chain, the
// all-or-nothing append operation, and the batch-level EIP-712 binding with
// its prune-on-failure policy.
package transcript

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/bls"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/contribution"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
)

var (
	ErrSizeMismatch           = errors.New("transcript: sub-ceremony count mismatch")
	ErrSubCeremonySize        = errors.New("transcript: sub-ceremony n1/n2 mismatch")
	ErrExtensionInvalid       = errors.New("transcript: new powers are not a valid extension of the current ones")
	ErrBadContributionSig     = errors.New("transcript: bls signature does not bind the identity to this update")
	ErrConcurrentModification = errors.New("transcript: concurrent modification detected, retry")
)

// BatchContribution is one contributor's submission: one Contribution per
// sub-ceremony plus the outer EIP-712 ECDSA binding for Ethereum identities.
type BatchContribution struct {
	Contributions  []contribution.Contribution
	EcdsaSignature identity.EcdsaSignature
}

// witnessEntry is one contributor's audit trail entry for a sub-ceremony:
// their resulting pot_pubkey, their signature, and a commitment hash over
// the update (supplemented auditing feature, see SPEC_FULL.md).
type witnessEntry struct {
	PotPubkey    bls12381.G2Affine
	BlsSignature identity.BlsSignature
	Identity     string
	CommitHash   [32]byte
	Timestamp    time.Time
}

// subCeremony holds one (n1, n2)-sized sub-ceremony's current contribution
// plus its full witness chain.
type subCeremony struct {
	n1, n2  int
	current contribution.Contribution
	witness []witnessEntry
}

// Transcript is the full multi-sub-ceremony transcript, guarded by a single
// reader-writer lock: writers (Append) are serialized and rare, readers
// (snapshots handed to lobby participants) are frequent.
type Transcript struct {
	mu   sync.RWMutex
	subs []subCeremony
}

// NewGenesis builds the starting transcript: one entropy-free Contribution
// per (n1, n2) pair, empty witness chains.
func NewGenesis(sizes [][2]int) *Transcript {
	subs := make([]subCeremony, len(sizes))
	for i, sz := range sizes {
		subs[i] = subCeremony{
			n1:      sz[0],
			n2:      sz[1],
			current: contribution.NewEntropyFree(sz[0], sz[1]),
		}
	}
	return &Transcript{subs: subs}
}

// FromBatch reconstructs a Transcript from a previously persisted batch
// (store.LoadTranscript's recovery baseline), seeding each sub-ceremony's
// current contribution from batch but starting a fresh in-memory witness
// chain — witness history beyond the last contribution is not needed to
// validate future extensions, only the current committed powers and
// pot_pubkey are.
func FromBatch(batch BatchContribution, sizes [][2]int) *Transcript {
	subs := make([]subCeremony, len(sizes))
	for i, sz := range sizes {
		subs[i] = subCeremony{n1: sz[0], n2: sz[1]}
		if i < len(batch.Contributions) {
			subs[i].current = batch.Contributions[i]
		} else {
			subs[i].current = contribution.NewEntropyFree(sz[0], sz[1])
		}
	}
	return &Transcript{subs: subs}
}

// Snapshot returns a BatchContribution with the current state of every
// sub-ceremony, safe to hand to a newly-promoted active contributor.
func (t *Transcript) Snapshot() BatchContribution {
	t.mu.RLock()
	defer t.mu.RUnlock()

	contribs := make([]contribution.Contribution, len(t.subs))
	for i, s := range t.subs {
		contribs[i] = s.current
	}
	return BatchContribution{Contributions: contribs}
}

// NumContributions returns how many successful Append calls each
// sub-ceremony has received (they are always equal in a healthy transcript,
// since Append is all-or-nothing across every sub-ceremony).
func (t *Transcript) NumContributions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.subs) == 0 {
		return 0
	}
	return len(t.subs[0].witness)
}

// Append validates new against the currently committed transcript and, only
// if every sub-ceremony validates, atomically replaces the committed state
// and extends every witness chain. Validation happens unlocked (it involves
// potentially-expensive pairing checks); the swap happens under the write
// lock with a re-check that nothing else committed in the meantime.
func (t *Transcript) Append(batch *BatchContribution, id identity.Identity, entries []identity.PotPubkeyEntry) error {
	old := t.Snapshot()

	if len(batch.Contributions) != len(old.Contributions) {
		return ErrSizeMismatch
	}

	for k, newC := range batch.Contributions {
		oldC := old.Contributions[k]

		if len(newC.Powers.G1) != len(oldC.Powers.G1) || len(newC.Powers.G2) != len(oldC.Powers.G2) {
			return fmt.Errorf("sub-ceremony %d: %w", k, ErrSubCeremonySize)
		}

		if err := newC.Validate(); err != nil {
			return fmt.Errorf("sub-ceremony %d: %w", k, err)
		}

		if err := bls.VerifyPubkeys(newC.Powers.G1, newC.Powers.G2, newC.PotPubkey); err != nil {
			return fmt.Errorf("sub-ceremony %d: %w", k, err)
		}

		ok, err := bls.VerifyExtension(oldC.Powers.G1[1], newC.Powers.G1[1], oldC.PotPubkey, newC.PotPubkey)
		if err != nil {
			return fmt.Errorf("sub-ceremony %d: extension check: %w", k, err)
		}
		if !ok {
			return fmt.Errorf("sub-ceremony %d: %w", k, ErrExtensionInvalid)
		}

		sig, present := newC.BlsSignature.Point()
		if !present {
			return fmt.Errorf("sub-ceremony %d: missing bls signature", k)
		}
		ok, err = bls.VerifySignatureDelta(sig, id.CanonicalBytes(), oldC.PotPubkey, newC.PotPubkey)
		if err != nil {
			return fmt.Errorf("sub-ceremony %d: signature check: %w", k, err)
		}
		if !ok {
			return fmt.Errorf("sub-ceremony %d: %w", k, ErrBadContributionSig)
		}
	}

	// Ethereum batch-level EIP-712 binding: prune, don't reject, on failure.
	if addr, isEth := id.EthereumAddress(); isEth && batch.EcdsaSignature.Present() {
		ok, err := identity.VerifyBatchBinding(entries, batch.EcdsaSignature, addr)
		if err != nil || !ok {
			batch.EcdsaSignature = identity.NoEcdsaSignature()
		}
	}

	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.subs) != len(old.Contributions) {
		return ErrConcurrentModification
	}
	for k := range t.subs {
		if !t.subs[k].current.PotPubkey.Equal(&old.Contributions[k].PotPubkey) {
			return ErrConcurrentModification
		}
	}

	for k := range t.subs {
		newC := batch.Contributions[k]
		prevHash := [32]byte{}
		if len(t.subs[k].witness) > 0 {
			prevHash = t.subs[k].witness[len(t.subs[k].witness)-1].CommitHash
		}
		commitHash := computeCommitmentHash(prevHash, id.Canonical(), newC, now)

		t.subs[k].current = newC
		t.subs[k].witness = append(t.subs[k].witness, witnessEntry{
			PotPubkey:    newC.PotPubkey,
			BlsSignature: newC.BlsSignature,
			Identity:     id.Canonical(),
			CommitHash:   commitHash,
			Timestamp:    now,
		})
	}

	return nil
}

// BuildPotPubkeyEntries constructs the PoTPubkeys EIP-712 array from a
// batch's contributions, in sub-ceremony order, for use with
// identity.VerifyBatchBinding / Transcript.Append.
func BuildPotPubkeyEntries(batch BatchContribution) []identity.PotPubkeyEntry {
	entries := make([]identity.PotPubkeyEntry, len(batch.Contributions))
	for i, c := range batch.Contributions {
		entries[i] = identity.PotPubkeyEntry{
			NumG1Powers: uint64(len(c.Powers.G1)),
			NumG2Powers: uint64(len(c.Powers.G2)),
			PotPubkey:   bls.EncodeG2Hex(c.PotPubkey),
		}
	}
	return entries
}

// WitnessLength returns the number of witness entries recorded for
// sub-ceremony k.
func (t *Transcript) WitnessLength(k int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs[k].witness)
}

// computeCommitmentHash is the supplemented auditing feature: a running
// SHA-256 commitment over identity, previous hash, a few powers, and the
// timestamp — additional third-party-auditable evidence alongside the
// witness chain, never load-bearing for acceptance on its own.
func computeCommitmentHash(prevHash [32]byte, identity string, c contribution.Contribution, ts time.Time) [32]byte {
	h := sha256.New()
	h.Write(prevHash[:])
	h.Write([]byte(identity))
	for i := 0; i < len(c.Powers.G1) && i < 4; i++ {
		b := c.Powers.G1[i].Bytes()
		h.Write(b[:])
	}
	potBytes := c.PotPubkey.Bytes()
	h.Write(potBytes[:])
	tsBytes, _ := ts.MarshalBinary()
	h.Write(tsBytes)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
