package repository

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
)

var ErrGameNotFound = fmt.Errorf("game %w", apperror.ErrNotFound)

// Backend opens a store session bound to one caller's bearer credential.
// Sessions are cheap and are dropped at the end of each request.
type Backend interface {
	Open(credential string) Session
}

// Session is the per-request view of the store: identity lookup plus the games collection.
type Session interface {
	// CurrentUser resolves the session credential, returning apperror.ErrUnauthorized when it has no identity.
	CurrentUser(ctx context.Context) (string, error)

	InsertGame(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)

	// JoinGame sets other on the game only while other is absent, returning
	// apperror.ErrGameAlreadyJoined when the update did not apply.
	JoinGame(ctx context.Context, id, other string) (*entity.Game, error)
}
