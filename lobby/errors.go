package lobby

import "errors"

var (
	ErrSessionCountLimitExceeded     = errors.New("lobby: session count limit exceeded")
	ErrUnknownSessionId              = errors.New("lobby: unknown session id")
	ErrRateLimited                   = errors.New("lobby: rate limited, check in again later")
	ErrAnotherContributionInProgress = errors.New("lobby: another contribution is already in progress")
	ErrNotActiveContributor          = errors.New("lobby: session is not the active contributor")
	ErrNotUsersTurn                  = errors.New("lobby: it is not this session's turn")
	ErrDeadlineExceeded              = errors.New("lobby: active slot deadline exceeded")
	ErrAlreadyContributedIdentity    = errors.New("lobby: identity has already contributed")
)
