package repository

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
)

type identityResolver interface {
	ResolveIdentity(token string) (string, error)
}

// RedisBackend serves sessions from the shared redis pool. Identity comes from
// verifying the credential locally, the pool itself carries no caller state.
type RedisBackend struct {
	games GameRepository
	auth  identityResolver
}

func NewRedisBackend(games GameRepository, auth identityResolver) *RedisBackend {
	return &RedisBackend{
		games: games,
		auth:  auth,
	}
}

func (that *RedisBackend) Open(credential string) Session {
	return &redisSession{
		credential: credential,
		games:      that.games,
		auth:       that.auth,
	}
}

type redisSession struct {
	credential string
	games      GameRepository
	auth       identityResolver
}

func (that *redisSession) CurrentUser(_ context.Context) (string, error) {
	if that.credential == "" {
		return "", apperror.ErrUnauthorized
	}

	userID, err := that.auth.ResolveIdentity(that.credential)
	if err != nil {
		return "", fmt.Errorf("could not resolve identity: %w", err)
	}

	return userID, nil
}

func (that *redisSession) InsertGame(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	if err := that.games.Create(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *redisSession) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.games.GetByID(ctx, id)
}

func (that *redisSession) JoinGame(ctx context.Context, id, other string) (*entity.Game, error) {
	game, applied, err := that.games.SetOtherIfAbsent(ctx, id, other)
	if err != nil {
		return nil, err
	}

	if !applied {
		return nil, apperror.ErrGameAlreadyJoined
	}

	return game, nil
}
