// Package api is the thin request surface translating HTTP-layer calls
// into single lobby-state-machine transitions, modeled on the teacher's
// httpHandler command dispatch in notary.go — plain net/http, no router
// framework, since the teacher itself uses none.
package api

import (
	"errors"
	"net/http"

	"github.com/zyclonepunch/kzg-ceremony-sequencer/lobby"
	"github.com/zyclonepunch/kzg-ceremony-sequencer/store"
)

// errorCode maps an internal error to the stable public string code of
// spec §7 and the HTTP status the teacher's own handlers use for
// equivalent conditions (404/409/429/400 style, matching httpHandler's
// StatusNotFound/StatusConflict/StatusBadRequest usage).
type errorCode struct {
	Code   string
	Status int
}

var codeTable = []struct {
	err  error
	code errorCode
}{
	{lobby.ErrUnknownSessionId, errorCode{"UnknownSessionId", http.StatusNotFound}},
	{lobby.ErrRateLimited, errorCode{"RateLimited", http.StatusTooManyRequests}},
	{lobby.ErrAnotherContributionInProgress, errorCode{"AnotherContributionInProgress", http.StatusConflict}},
	{lobby.ErrSessionCountLimitExceeded, errorCode{"LobbyIsFull", http.StatusServiceUnavailable}},
	{lobby.ErrNotUsersTurn, errorCode{"NotUsersTurn", http.StatusForbidden}},
	{lobby.ErrDeadlineExceeded, errorCode{"DeadlineExceeded", http.StatusForbidden}},
	{lobby.ErrNotActiveContributor, errorCode{"NotActiveContributor", http.StatusForbidden}},
	{lobby.ErrAlreadyContributedIdentity, errorCode{"AlreadyContributed", http.StatusConflict}},
	{store.ErrAlreadyContributed, errorCode{"AlreadyContributed", http.StatusConflict}},
}

// classify maps err to its public error code and HTTP status, falling back
// to a generic TaskError for anything unrecognized (storage/infra errors,
// validation errors bubbled up from transcript.Append).
func classify(err error) errorCode {
	if err == nil {
		return errorCode{}
	}
	if _, ok := err.(transportError); ok {
		return errorCode{"Transport", http.StatusBadRequest}
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return errorCode{"TaskError", http.StatusInternalServerError}
}
