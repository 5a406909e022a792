package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
)

const maxBodyBytes = 1 << 20

type gameUseCase interface {
	CreateGame(ctx context.Context, credential string, state json.RawMessage) (*entity.Game, error)
	JoinGame(ctx context.Context, credential, gameID string) (*entity.Game, error)
}

type GameHandlers interface {
	CreateGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
}

type gameHandlers struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandlers(logger *slog.Logger, games gameUseCase) GameHandlers {
	return &gameHandlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

type dataResponse struct {
	Data any `json:"data"`
}

func (that *gameHandlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateGame")

	body, err := readBody(w, r)
	if err != nil {
		log.Debug("failed to read body", "error", err)
		// identity is still checked first, the use case sees an empty payload
		body = nil
	}

	game, err := that.games.CreateGame(r.Context(), bearerToken(r), body)
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: game})
}

func (that *gameHandlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "JoinGame")

	body, err := readBody(w, r)
	if err != nil {
		that.writeError(w, log, fmt.Errorf("%w: failed to read body: %w", apperror.ErrBadRequest, err))
		return
	}

	// the body shape is checked before the store is contacted at all
	joinRequest, err := entity.ParseJoinRequest(body)
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	game, err := that.games.JoinGame(r.Context(), bearerToken(r), joinRequest.GameID)
	if err != nil {
		that.writeError(w, log.With("game_id", joinRequest.GameID), err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: game})
}

func (that *gameHandlers) writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		log.Debug("unauthorized", "error", err)
		writeText(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperror.ErrNotFound):
		log.Debug("not found", "error", err)
		writeText(w, http.StatusNotFound, "Not Found")
	case apperror.IsBadRequest(err):
		log.Debug("bad request", "error", err)
		writeText(w, http.StatusBadRequest, "Bad Request")
	default:
		log.Error("store request failed", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

// bearerToken - returns the token from an "Authorization: Bearer <token>" header, or "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
