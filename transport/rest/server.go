package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, games GameHandlers) *Server {
	return &Server{
		logger: logger.With("component", "http_server"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(games),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// NewRouter - registers the lobby routes, both bare and under the functions prefix the web client calls.
func NewRouter(games GameHandlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", ping)

	for _, prefix := range []string{"", "/functions/v1"} {
		mux.HandleFunc("POST "+prefix+"/create-game", games.CreateGame)
		mux.HandleFunc("OPTIONS "+prefix+"/create-game", preflight)
		mux.HandleFunc("POST "+prefix+"/join-game", games.JoinGame)
		mux.HandleFunc("OPTIONS "+prefix+"/join-game", preflight)
	}

	return withCORS(mux)
}

// Start - serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		that.logger.Info("listening", "addr", that.srv.Addr)
		errCh <- that.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := that.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	that.logger.Info("server stopped")

	return nil
}
