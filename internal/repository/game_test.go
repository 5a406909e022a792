package repository

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
	"github.com/rocketscienceinc/lobby-backend/internal/entity"
	"github.com/rocketscienceinc/lobby-backend/testing/suite"
)

func TestGameRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a new game without a second player
		game := entity.NewGame("123", "u1", json.RawMessage(`{"board":[]}`))

		// When: Create is called
		err := gameRepo.Create(ctx, game)

		// Then: no error should be returned and the game is stored as created
		require.NoError(t, err)

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "123", stored.ID)
		assert.Equal(t, "u1", stored.Host)
		assert.Nil(t, stored.Other)
		assert.JSONEq(t, `{"board":[]}`, string(stored.GameState))
	})

	t.Run("Create_AlreadyExists", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game
		game := entity.NewGame("123", "u1", json.RawMessage(`{}`))
		require.NoError(t, gameRepo.Create(ctx, game))

		// When: a game with the same id is created again
		err := gameRepo.Create(ctx, entity.NewGame("123", "u2", json.RawMessage(`{}`)))

		// Then: the insert is refused and the first host is kept
		require.ErrorIs(t, err, ErrGameAlreadyExists)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, "u1", stored.Host)
	})
}

func TestGameRepository_GetByID(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// When: GetByID is called with non-existent ID
	retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

	// Then: an ErrGameNotFound error should be returned
	require.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Nil(t, retrievedGame)
}

func TestGameRepository_SetOtherIfAbsent(t *testing.T) {
	t.Run("Sets other on a created game", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)
		require.NoError(t, gameRepo.Create(ctx, entity.NewGame("123", "u1", json.RawMessage(`{}`))))

		// When: a second player joins
		joined, applied, err := gameRepo.SetOtherIfAbsent(ctx, "123", "u2")

		// Then: the update is applied and the reply carries the whole record
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, "123", joined.ID)
		assert.Equal(t, "u1", joined.Host)
		require.NotNil(t, joined.Other)
		assert.Equal(t, "u2", *joined.Other)
		assert.JSONEq(t, `{}`, string(joined.GameState))

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		require.NotNil(t, stored.Other)
		assert.Equal(t, "u2", *stored.Other)
	})

	t.Run("Leaves a joined game unchanged", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)
		require.NoError(t, gameRepo.Create(ctx, entity.NewGame("123", "u1", json.RawMessage(`{}`))))

		_, applied, err := gameRepo.SetOtherIfAbsent(ctx, "123", "u2")
		require.NoError(t, err)
		require.True(t, applied)

		// When: a third player tries to join
		current, applied, err := gameRepo.SetOtherIfAbsent(ctx, "123", "u3")

		// Then: nothing is written and the reply shows the existing second player
		require.NoError(t, err)
		assert.False(t, applied)
		require.NotNil(t, current.Other)
		assert.Equal(t, "u2", *current.Other)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, "u2", *stored.Other)
	})

	t.Run("Missing game", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		game, applied, err := gameRepo.SetOtherIfAbsent(ctx, "9999999", "u2")

		require.ErrorIs(t, err, ErrGameNotFound)
		assert.False(t, applied)
		assert.Nil(t, game)
	})

	t.Run("Concurrent joins have exactly one winner", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)
		require.NoError(t, gameRepo.Create(ctx, entity.NewGame("123", "u1", json.RawMessage(`{}`))))

		// When: many players race to join the same game
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, applied, err := gameRepo.SetOtherIfAbsent(ctx, "123", fmt.Sprintf("racer-%d", i))
				if err == nil && applied {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		// Then: only one of them becomes the second player
		assert.Equal(t, int32(1), wins.Load())
	})
}
