// Package api wires the lobby's exported operations to plain net/http
// handlers. The dispatch shape — read a command-identifying element off
// the request, look up the session id, recover from handler panics without
// taking the process down — is adapted from notary.go's httpHandler and
// destroyOnPanic, generalized from TLSNotary's single command-allowlist
// dispatcher to one handler per ceremony operation.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/identity"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/lobby"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/transcript"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/xlog"
)

// Server exposes the ceremony lobby over HTTP. Kept deliberately thin: it
// never touches cryptographic material directly, only translates errors
// and marshals JSON around calls into lobby.Lobby.
type Server struct {
	lobby *lobby.Lobby
	log   *xlog.Logger
}

func New(l *lobby.Lobby, log *xlog.Logger) *Server {
	return &Server{lobby: l, log: log}
}

// writeError mirrors notary.go's writeResponse header-setting, but encodes
// the stable error code / message pair instead of raw bytes.
func writeError(w http.ResponseWriter, err error) {
	ec := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ec.Status)
	_ = json.NewEncoder(w).Encode(struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{Error: ec.Code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// recoverAndDestroy recovers a panicking handler, mirroring the teacher's
// destroyOnPanic: log the stack, then make sure the session does not linger
// half-admitted by asynchronously destroying it.
func (s *Server) recoverAndDestroy(sid string) {
	if r := recover(); r != nil {
		if s.log != nil {
			s.log.Error("handler panic", "session_id", sid, "recover", r, "stack", string(debug.Stack()))
		}
		if sid != "" {
			s.lobby.Destroy(sid)
		}
	}
}

// joinRequest is the payload for POST /lobby/join: the caller's externally
// verified identity (OAuth2/SIWE binding happens upstream of this layer;
// see SPEC_FULL.md's scope section).
type joinRequest struct {
	Identity string `json:"identity"`
}

// HandleJoin registers a new session for the supplied identity string
// (spec's canonical identity encoding, parsed via identity.Parse).
func (s *Server) HandleJoin(w http.ResponseWriter, r *http.Request) {
	defer s.recoverAndDestroy("")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errTransport(err))
		return
	}
	id, err := identity.Parse(req.Identity)
	if err != nil {
		writeError(w, errTransport(err))
		return
	}

	sid, err := s.lobby.InsertSession(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct {
		SessionID string `json:"sessionId"`
	}{sid})
}

// HandleTryContribute implements try_contribute: attempt to claim the
// active slot and, on success, hand back the transcript snapshot the
// caller must build their contribution from.
func (s *Server) HandleTryContribute(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sessionId")
	defer s.recoverAndDestroy(sid)

	if sid == "" {
		writeError(w, errTransport(lobby.ErrUnknownSessionId))
		return
	}

	batch, err := s.lobby.TryPromote(sid)
	if errors.Is(err, lobby.ErrAnotherContributionInProgress) {
		// The caller may already hold the active slot (e.g. a dropped
		// response to a previous try_contribute) — the
		// request_contribution_file_again path re-serves the in-flight
		// snapshot instead of failing a legitimate retry.
		if again, againErr := s.lobby.RequestContributionAgain(sid); againErr == nil {
			writeJSON(w, again)
			return
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, batch)
}

// contributeRequest is the payload for POST /lobby/contribute: the active
// contributor's completed batch.
type contributeRequest struct {
	Contributions transcript.BatchContribution `json:"batchContribution"`
}

// HandleContribute implements contribute: validate and apply the supplied
// batch as sid's turn, via lobby.Contribute (the ACTIVE -> DONE transition
// on success).
func (s *Server) HandleContribute(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sessionId")
	defer s.recoverAndDestroy(sid)

	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errTransport(err))
		return
	}

	if err := s.lobby.Contribute(sid, req.Contributions); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct {
		Success bool `json:"success"`
	}{true})
}

// HandleAbort implements abort: release the active slot without applying a
// contribution.
func (s *Server) HandleAbort(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sessionId")
	defer s.recoverAndDestroy(sid)

	if err := s.lobby.AbortContribution(sid); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct {
		Success bool `json:"success"`
	}{true})
}

// HandleStatus exposes the supplemented ceremony status surface (lobby
// occupancy, active deadline, contributions so far).
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.lobby.Status())
}

// errTransport wraps a client-facing malformed-request error under the
// Transport code from spec §7, distinguishing it from TaskError (internal
// failure) in classify.
type transportError struct{ err error }

func (t transportError) Error() string { return t.err.Error() }
func (t transportError) Unwrap() error { return t.err }

func errTransport(err error) error { return transportError{err} }
