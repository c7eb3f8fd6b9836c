// Package store implements the persistent log component: atomic transcript
// persistence and contributor de-duplication, backed by cosmos-db. The
// in-memory transcript is authoritative during a run; this is the recovery
// baseline, generalized from the teacher's load-key-pairs-at-startup
// pattern (zkey.NewZkeyHandler) to a mutable, append-as-you-go log.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
)

var (
	ErrAlreadyContributed = errors.New("store: contributor already participated")
)

const (
	contributorKeyPrefix = "contributor:"
	transcriptKey        = "transcript"
)

// Store is the persistent log: a set of contributor unique identifiers and
// the last-written transcript snapshot. A single mutex serializes the
// check-then-set sequence InsertContributor needs for idempotent-or-fail
// semantics; cosmos-db's own Set/Get are not by themselves a compare-and-
// swap primitive.
type Store struct {
	mu sync.Mutex
	db dbm.DB
}

// New wraps an already-open cosmos-db handle. Callers typically pass
// dbm.NewGoLevelDB(name, dir) for a persistent backend or dbm.NewMemDB() for
// tests.
func New(db dbm.DB) *Store {
	return &Store{db: db}
}

// InsertContributor records uniqueIdentifier as having contributed. The
// first call for a given identifier succeeds; any later call for the same
// identifier fails with ErrAlreadyContributed.
func (s *Store) InsertContributor(uniqueIdentifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := []byte(contributorKeyPrefix + uniqueIdentifier)
	exists, err := s.db.Has(key)
	if err != nil {
		return fmt.Errorf("store: checking contributor: %w", err)
	}
	if exists {
		return ErrAlreadyContributed
	}
	if err := s.db.SetSync(key, []byte{1}); err != nil {
		return fmt.Errorf("store: inserting contributor: %w", err)
	}
	return nil
}

// HasContributed is a read-only check for lobby.InsertSession's early
// rejection of obviously-already-used identities, before a slot is ever
// granted.
func (s *Store) HasContributed(uniqueIdentifier string) (bool, error) {
	exists, err := s.db.Has([]byte(contributorKeyPrefix + uniqueIdentifier))
	if err != nil {
		return false, fmt.Errorf("store: checking contributor: %w", err)
	}
	return exists, nil
}

// persistedBatch is the on-disk envelope for the last-written transcript:
// one BatchContribution per sub-ceremony plus the identity that produced it.
// The witness chain and the contribution count are not persisted; after a
// restart transcript.FromBatch starts with an empty witness chain.
type persistedBatch struct {
	Batch           transcript.BatchContribution `json:"batch"`
	ContributorName string                       `json:"contributorIdentity"`
}

// AppendTranscript atomically persists the latest transcript state: the
// whole update lands or none of it does, via a single cosmos-db batch
// write.
func (s *Store) AppendTranscript(batch transcript.BatchContribution, contributorIdentity string) error {
	data, err := json.Marshal(persistedBatch{Batch: batch, ContributorName: contributorIdentity})
	if err != nil {
		return fmt.Errorf("store: marshal transcript: %w", err)
	}

	wb := s.db.NewBatch()
	defer wb.Close()

	if err := wb.Set([]byte(transcriptKey), data); err != nil {
		return fmt.Errorf("store: stage transcript write: %w", err)
	}
	if err := wb.WriteSync(); err != nil {
		return fmt.Errorf("store: commit transcript write: %w", err)
	}
	return nil
}

// LoadTranscript returns the most recently persisted batch, or ok=false if
// nothing has ever been written (the genesis case).
func (s *Store) LoadTranscript() (transcript.BatchContribution, bool, error) {
	data, err := s.db.Get([]byte(transcriptKey))
	if err != nil {
		return transcript.BatchContribution{}, false, fmt.Errorf("store: load transcript: %w", err)
	}
	if data == nil {
		return transcript.BatchContribution{}, false, nil
	}

	var pb persistedBatch
	if err := json.Unmarshal(data, &pb); err != nil {
		return transcript.BatchContribution{}, false, fmt.Errorf("store: unmarshal transcript: %w", err)
	}
	return pb.Batch, true, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
