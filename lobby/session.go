package lobby

import (
	"time"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
)

// Session is one registered would-be contributor, tracked from
// InsertSession until it is destroyed by explicit abort, deadline expiry,
// or successful submission.
type Session struct {
	SessionID          string
	Identity           identity.Identity
	UniqueIdentifier   string
	AdmissionTime      time.Time
	LastPingTime       time.Time
	IsFirstPingAttempt bool
}

// ActiveSlot is the single turnstile position granting exclusive
// contribution rights, owned by exactly one session at a time.
type ActiveSlot struct {
	SessionID string
	Deadline  time.Time
	InFlight  transcript.BatchContribution
}

// Status is a read-only projection of lobby occupancy, the supplemented
// ceremony status surface described in SPEC_FULL.md.
type Status struct {
	SessionCount           int
	ActiveSessionID        string
	HasActiveSession       bool
	ActiveDeadline         time.Time
	CompletedContributions int
}
