package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/lobby-backend/internal/config"
	"github.com/rocketscienceinc/lobby-backend/internal/repository"
	"github.com/rocketscienceinc/lobby-backend/internal/repository/storage"
	"github.com/rocketscienceinc/lobby-backend/internal/repository/supabase"
	"github.com/rocketscienceinc/lobby-backend/internal/service"
	"github.com/rocketscienceinc/lobby-backend/internal/usecase"
	"github.com/rocketscienceinc/lobby-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := newBackend(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeBackend()

	gameUseCase := usecase.NewGameUseCase(logger, backend, conf.Store.Timeout)
	server := rest.New(logger, conf.HTTPPort, rest.NewGameHandlers(logger, gameUseCase))

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "backend", conf.Store.Backend)
	if err = server.Start(ctx); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newBackend(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.Backend, func(), error) {
	switch conf.Store.Backend {
	case config.BackendRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString, conf.Store.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeFn := func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		gameRepo := repository.NewGameRepository(redisStorage)
		authService := service.NewAuthService(conf.Store.JWTSecret)

		return repository.NewRedisBackend(gameRepo, authService), closeFn, nil
	case config.BackendSupabase:
		return supabase.New(conf.Store.URL, conf.Store.PublicKey, conf.Store.Timeout), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, conf.Store.Backend)
	}
}
