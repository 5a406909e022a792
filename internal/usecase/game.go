package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
	"github.com/rocketscienceinc/lobby-backend/internal/pkg"
	"github.com/rocketscienceinc/lobby-backend/internal/repository"
)

type GameUseCase interface {
	CreateGame(ctx context.Context, credential string, state json.RawMessage) (*entity.Game, error)
	JoinGame(ctx context.Context, credential, gameID string) (*entity.Game, error)
}

type storeBackend interface {
	Open(credential string) repository.Session
}

type gameUseCase struct {
	logger  *slog.Logger
	backend storeBackend
	timeout time.Duration

	generateID func() (string, error)
}

func NewGameUseCase(logger *slog.Logger, backend storeBackend, timeout time.Duration) GameUseCase {
	return &gameUseCase{
		logger:     logger.With("component", "game_usecase"),
		backend:    backend,
		timeout:    timeout,
		generateID: pkg.GenerateGameID,
	}
}

// CreateGame - resolves the host, then stores a new game holding the opaque state.
func (that *gameUseCase) CreateGame(ctx context.Context, credential string, state json.RawMessage) (*entity.Game, error) {
	ctx, cancel := that.withTimeout(ctx)
	defer cancel()

	session := that.backend.Open(credential)

	host, err := session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if entity.IsEmptyState(state) {
		return nil, apperror.ErrEmptyGameState
	}

	gameID, err := that.generateID()
	if err != nil {
		return nil, fmt.Errorf("error generating game ID: %w", err)
	}

	game, err := session.InsertGame(ctx, entity.NewGame(gameID, host, state))
	if err != nil {
		return nil, err
	}

	that.logger.Debug("game created", "game_id", game.ID, "host", host, "state", game.State())

	return game, nil
}

// JoinGame - seats the caller as the second player of gameID.
func (that *gameUseCase) JoinGame(ctx context.Context, credential, gameID string) (*entity.Game, error) {
	ctx, cancel := that.withTimeout(ctx)
	defer cancel()

	session := that.backend.Open(credential)

	userID, err := session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	game, err := session.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.IsJoined() {
		return nil, apperror.ErrGameAlreadyJoined
	}

	joined, err := session.JoinGame(ctx, gameID, userID)
	if errors.Is(err, apperror.ErrGameAlreadyJoined) {
		that.logger.Debug("lost join race", "game_id", gameID, "user", userID)
	}
	if err != nil {
		return nil, err
	}

	that.logger.Debug("game joined", "game_id", gameID, "other", userID, "state", joined.State())

	return joined, nil
}

func (that *gameUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if that.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, that.timeout)
}
