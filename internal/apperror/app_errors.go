package apperror

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBadRequest        = errors.New("bad request")
	ErrNotFound          = errors.New("not found")
	ErrGameAlreadyJoined = errors.New("game already has two players")
	ErrEmptyGameState    = errors.New("game state is empty")
	ErrInvalidGameID     = errors.New("game id must be a string")
)

// IsBadRequest - reports whether err is a client input or invariant violation.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrGameAlreadyJoined) ||
		errors.Is(err, ErrEmptyGameState) ||
		errors.Is(err, ErrInvalidGameID)
}
