// Package lobby implements the ceremony's concurrency core: session
// registration, the single active-slot turnstile, rate limiting, deadline
// enforcement, and the detached admission tail. Structurally adapted from
// the teacher's session_manager.SessionManager — a sync.Mutex-guarded
// session map plus a single-owner exclusive resource (otOwner there, the
// ActiveSlot here) and a background sweep goroutine — generalized from
// TLSNotary's per-connection sessions to the ceremony's single-slot
// powers-of-tau turnstile.
package lobby

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/xlog"
)

// ContributorStore is the subset of the persistent log the lobby needs:
// a cheap existence check for early rejection at InsertSession, and the
// idempotent-or-fail insert performed as part of the admission tail.
type ContributorStore interface {
	HasContributed(uniqueIdentifier string) (bool, error)
	InsertContributor(uniqueIdentifier string) error
}

// Lobby is the process-wide session registry and single active slot. One
// exclusive lock protects sessions and active, mirroring the teacher's
// single sync.Mutex over its sessions map and otOwner field.
type Lobby struct {
	mu sync.Mutex

	sessions map[string]*Session
	active   *ActiveSlot

	capacity             int
	minCheckinDelay      time.Duration
	contributionDeadline time.Duration

	transcript *transcript.Transcript
	store      ContributorStore
	log        *xlog.Logger

	destroyChan chan string
	persistHook persistFunc
}

// New constructs a Lobby and starts its background destroy-signal monitor,
// directly modeled on the teacher's sm.Init spawning monitorDestroyChan.
// The periodic deadline sweep (Tick) is NOT self-started here: it is driven
// externally by a time.Ticker in main.go per SPEC_FULL.md's concurrency
// section, so tests can call Tick() synchronously without waiting on a
// timer.
func New(capacity int, minCheckinDelay, contributionDeadline time.Duration, tr *transcript.Transcript, store ContributorStore, log *xlog.Logger) *Lobby {
	l := &Lobby{
		sessions:             make(map[string]*Session),
		capacity:             capacity,
		minCheckinDelay:      minCheckinDelay,
		contributionDeadline: contributionDeadline,
		transcript:           tr,
		store:                store,
		log:                  log,
		destroyChan:          make(chan string, 64),
	}
	go l.monitorDestroyChan()
	return l
}

// monitorDestroyChan removes sessions on request, mirroring the teacher's
// monitorDestroyChan loop over sm.destroyChan.
func (l *Lobby) monitorDestroyChan() {
	for sid := range l.destroyChan {
		l.mu.Lock()
		delete(l.sessions, sid)
		if l.active != nil && l.active.SessionID == sid {
			l.active = nil
		}
		l.mu.Unlock()
	}
}

// InsertSession registers a new would-be contributor. Rejected if the
// lobby is at capacity or the identity has already contributed.
func (l *Lobby) InsertSession(id identity.Identity) (string, error) {
	uid := id.UniqueIdentifier()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.sessions) >= l.capacity {
		return "", ErrSessionCountLimitExceeded
	}

	if uid != "" {
		contributed, err := l.store.HasContributed(uid)
		if err != nil {
			return "", fmt.Errorf("insert_session: %w", err)
		}
		if contributed {
			return "", fmt.Errorf("insert_session: %w", ErrAlreadyContributedIdentity)
		}
	}

	sid := uuid.New().String()
	now := time.Now()
	l.sessions[sid] = &Session{
		SessionID:          sid,
		Identity:           id,
		UniqueIdentifier:   uid,
		AdmissionTime:      now,
		LastPingTime:       now,
		IsFirstPingAttempt: true,
	}
	if l.log != nil {
		l.log.Info("session registered", "session_id", sid, "identity", id.Canonical())
	}
	return sid, nil
}

// ModifyParticipant calls f on the session's state under the lobby lock.
func (l *Lobby) ModifyParticipant(sid string, f func(*Session)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[sid]
	if !ok {
		return ErrUnknownSessionId
	}
	f(s)
	return nil
}

// clearStaleActiveLocked clears the active slot if its deadline has passed
// and removes the expired session. Must be called with l.mu held.
func (l *Lobby) clearStaleActiveLocked() {
	if l.active != nil && time.Now().After(l.active.Deadline) {
		if l.log != nil {
			l.log.Info("active slot deadline exceeded, clearing", "session_id", l.active.SessionID)
		}
		delete(l.sessions, l.active.SessionID)
		l.active = nil
	}
}

// Tick is the periodic deadline sweep: if the active slot is past its
// deadline, it is cleared. Called from a time.Ticker loop in main.go,
// modeled on the teacher's monitorSessions loop.
func (l *Lobby) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearStaleActiveLocked()
}

// TryPromote attempts to move sid into the active slot. On success it
// returns a snapshot of the current transcript for the contributor to work
// from.
//
// The tail of this operation (recording the contributor in the persistent
// de-duplication log, then snapshotting the transcript) runs in a detached
// goroutine whose mutations to lobby state happen regardless of whether
// this call's caller is still around to receive them — the completion
// channel is buffered so the goroutine never blocks on a reader that never
// arrives. This is what makes the admission tail robust to the originating
// HTTP request being cancelled: cancellation can abandon the wait below,
// but never abandons the lobby in an inconsistent state.
func (l *Lobby) TryPromote(sid string) (transcript.BatchContribution, error) {
	l.mu.Lock()

	s, ok := l.sessions[sid]
	if !ok {
		l.mu.Unlock()
		return transcript.BatchContribution{}, ErrUnknownSessionId
	}

	l.clearStaleActiveLocked()
	if l.active != nil {
		l.mu.Unlock()
		return transcript.BatchContribution{}, ErrAnotherContributionInProgress
	}

	now := time.Now()
	if !s.IsFirstPingAttempt && now.Sub(s.LastPingTime) < l.minCheckinDelay {
		l.mu.Unlock()
		return transcript.BatchContribution{}, ErrRateLimited
	}
	s.IsFirstPingAttempt = false
	s.LastPingTime = now

	deadline := now.Add(l.contributionDeadline)
	l.active = &ActiveSlot{SessionID: sid, Deadline: deadline}
	uid := s.UniqueIdentifier
	l.mu.Unlock()

	type result struct {
		snapshot transcript.BatchContribution
		err      error
	}
	done := make(chan result, 1)

	go func() {
		if uid != "" {
			if err := l.store.InsertContributor(uid); err != nil {
				l.clearActiveIfMatches(sid)
				done <- result{err: fmt.Errorf("try_promote: %w", err)}
				return
			}
		}
		snap := l.transcript.Snapshot()
		l.mu.Lock()
		if l.active != nil && l.active.SessionID == sid {
			l.active.InFlight = snap
		}
		l.mu.Unlock()
		done <- result{snapshot: snap}
	}()

	res := <-done
	return res.snapshot, res.err
}

func (l *Lobby) clearActiveIfMatches(sid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != nil && l.active.SessionID == sid {
		l.active = nil
	}
}

// RequestContributionAgain returns the in-flight transcript snapshot handed
// to the current active contributor, e.g. after a dropped response.
func (l *Lobby) RequestContributionAgain(sid string) (transcript.BatchContribution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearStaleActiveLocked()
	if l.active == nil || l.active.SessionID != sid {
		return transcript.BatchContribution{}, ErrNotActiveContributor
	}
	return l.active.InFlight, nil
}

// Contribute validates and applies batch as sid's contribution. On success
// the active slot is cleared and the session is removed (ACTIVE -> DONE).
// If the batch is rejected, the active slot is cleared but the session
// stays registered, subject to the usual check-in rate limit.
func (l *Lobby) Contribute(sid string, batch transcript.BatchContribution) error {
	l.mu.Lock()
	l.clearStaleActiveLocked()
	if l.active == nil || l.active.SessionID != sid {
		l.mu.Unlock()
		return ErrNotUsersTurn
	}
	if time.Now().After(l.active.Deadline) {
		l.active = nil
		l.mu.Unlock()
		return ErrDeadlineExceeded
	}
	s, ok := l.sessions[sid]
	if !ok {
		l.mu.Unlock()
		return ErrUnknownSessionId
	}
	id := s.Identity
	l.mu.Unlock()

	entries := transcript.BuildPotPubkeyEntries(batch)
	if err := l.transcript.Append(&batch, id, entries); err != nil {
		l.clearActiveIfMatches(sid)
		return fmt.Errorf("contribute: %w", err)
	}

	// Persistence follows the in-memory commit: the in-memory transcript is
	// authoritative during a run (per the persistent-log contract), so a
	// storage failure here is returned to the caller as a wrapped error
	// (classified as TaskError by the api layer) rather than unwound from the
	// already-committed in-memory state.
	var persistErr error
	if err := l.persist(batch, id.Canonical()); err != nil {
		persistErr = fmt.Errorf("contribute: %w", err)
	}

	l.mu.Lock()
	delete(l.sessions, sid)
	if l.active != nil && l.active.SessionID == sid {
		l.active = nil
	}
	l.mu.Unlock()

	if l.log != nil {
		l.log.Info("contribution accepted", "session_id", sid, "identity", id.Canonical())
	}
	return persistErr
}

// persistFunc lets main.go wire a store.Store without this package
// importing the store package directly (it only needs ContributorStore).
type persistFunc func(batch transcript.BatchContribution, contributorIdentity string) error

func (l *Lobby) persist(batch transcript.BatchContribution, contributorIdentity string) error {
	if l.persistHook == nil {
		return nil
	}
	return l.persistHook(batch, contributorIdentity)
}

// SetPersistHook wires the transcript-append side of the persistent store.
// Kept separate from ContributorStore because AppendTranscript's signature
// is domain-specific (it needs the transcript package's BatchContribution),
// unlike the two identifier-only methods ContributorStore describes.
func (l *Lobby) SetPersistHook(f func(batch transcript.BatchContribution, contributorIdentity string) error) {
	l.persistHook = f
}

// Destroy asynchronously removes sid, mirroring the teacher's
// destroyOnPanic pattern of signalling cleanup over a channel rather than
// acting inline — useful from a panic-recovery handler in the api layer
// where the caller's own stack is already unwinding.
func (l *Lobby) Destroy(sid string) {
	l.destroyChan <- sid
}

// AbortContribution releases the active slot and removes the session,
// without applying any contribution.
func (l *Lobby) AbortContribution(sid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil || l.active.SessionID != sid {
		return ErrNotActiveContributor
	}
	l.active = nil
	delete(l.sessions, sid)
	return nil
}

// Status returns a read-only projection of lobby occupancy.
func (l *Lobby) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{
		SessionCount:           len(l.sessions),
		CompletedContributions: l.transcript.NumContributions(),
	}
	if l.active != nil {
		st.HasActiveSession = true
		st.ActiveSessionID = l.active.SessionID
		st.ActiveDeadline = l.active.Deadline
	}
	return st
}
