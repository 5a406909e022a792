package rest

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/lobby-backend/internal/repository"
	"github.com/rocketscienceinc/lobby-backend/internal/service"
	"github.com/rocketscienceinc/lobby-backend/internal/usecase"
	"github.com/rocketscienceinc/lobby-backend/testing/suite"
)

func TestLobby_CreateThenJoin(t *testing.T) {
	ctx, st := suite.New(t)

	auth := service.NewAuthService("lobby-test-secret-with-enough-length")
	backend := repository.NewRedisBackend(repository.NewGameRepository(st.Storage), auth)
	router := NewRouter(NewGameHandlers(st.Logger, usecase.NewGameUseCase(st.Logger, backend, time.Second)))

	token := func(userID string) string {
		t.Helper()
		signed, err := auth.GenerateToken(userID, time.Hour)
		require.NoError(t, err)
		return signed
	}

	var created struct {
		Data struct {
			ID        string          `json:"id"`
			Host      string          `json:"host"`
			Other     *string         `json:"other"`
			GameState json.RawMessage `json:"gameState"`
		} `json:"data"`
	}

	// Given: U1 creates a game with an empty board
	rec := doRequest(router, http.MethodPost, "/create-game", token("U1"), `{"board":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	gameID := created.Data.ID
	assert.NotEmpty(t, gameID)
	assert.Equal(t, "U1", created.Data.Host)
	assert.Nil(t, created.Data.Other)
	assert.JSONEq(t, `{"board":[]}`, string(created.Data.GameState))

	// When: an anonymous caller tries to join
	rec = doRequest(router, http.MethodPost, "/join-game", "", `{"gameId":"`+gameID+`"}`)

	// Then: the request is rejected and the game stays open
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// When: U2 joins
	rec = doRequest(router, http.MethodPost, "/join-game", token("U2"), `{"gameId":"`+gameID+`"}`)

	// Then: U2 is the second player
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := repository.NewGameRepository(st.Storage).GetByID(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, stored.Other)
	assert.Equal(t, "U2", *stored.Other)

	// When: U3 joins the full game
	rec = doRequest(router, http.MethodPost, "/join-game", token("U3"), `{"gameId":"`+gameID+`"}`)

	// Then: U3 is turned away and U2 keeps the seat
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err = repository.NewGameRepository(st.Storage).GetByID(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, "U2", *stored.Other)

	// When: joining a game that does not exist
	rec = doRequest(router, http.MethodPost, "/join-game", token("U3"), `{"gameId":"missing"}`)

	// Then: it is not found
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
