package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/lobby-backend/internal/entity"
)

var ErrGameAlreadyExists = errors.New("game already exists")

const (
	fieldID        = "id"
	fieldHost      = "host"
	fieldOther     = "other"
	fieldGameState = "gameState"
)

// insertGameScript refuses to overwrite an existing game key.
var insertGameScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'id', ARGV[1], 'host', ARGV[2], 'gameState', ARGV[3])
return 1
`)

// joinGameScript replies {-1} for a missing game. Otherwise the reply is the
// HSETNX result for other followed by the hash as it stands after the write.
var joinGameScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return {-1}
end
local applied = redis.call('HSETNX', KEYS[1], 'other', ARGV[1])
local reply = redis.call('HGETALL', KEYS[1])
table.insert(reply, 1, applied)
return reply
`)

var errMalformedJoinReply = errors.New("malformed join reply")

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	SetOtherIfAbsent(ctx context.Context, id, other string) (*entity.Game, bool, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	state := game.GameState
	if state == nil {
		state = json.RawMessage("null")
	}

	created, err := insertGameScript.Run(ctx, that.client, []string{gameKey(game.ID)}, game.ID, game.Host, string(state)).Int()
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	if created == 0 {
		return ErrGameAlreadyExists
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	fields, err := that.client.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if len(fields) == 0 {
		return nil, ErrGameNotFound
	}

	return gameFromFields(fields), nil
}

func gameFromFields(fields map[string]string) *entity.Game {
	game := &entity.Game{
		ID:        fields[fieldID],
		Host:      fields[fieldHost],
		GameState: json.RawMessage(fields[fieldGameState]),
	}

	if other, ok := fields[fieldOther]; ok {
		game.Other = &other
	}

	return game
}

// SetOtherIfAbsent - atomically writes other when the game exists and has no second player yet.
// The record is returned from the same script call whether or not the write was applied.
func (that *dbGame) SetOtherIfAbsent(ctx context.Context, id, other string) (*entity.Game, bool, error) {
	reply, err := joinGameScript.Run(ctx, that.client, []string{gameKey(id)}, other).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("failed to join game: %w", err)
	}

	if len(reply) == 0 {
		return nil, false, errMalformedJoinReply
	}

	applied, ok := reply[0].(int64)
	if !ok {
		return nil, false, fmt.Errorf("%w: status %T", errMalformedJoinReply, reply[0])
	}
	if applied == -1 {
		return nil, false, ErrGameNotFound
	}

	pairs := reply[1:]
	if len(pairs)%2 != 0 {
		return nil, false, fmt.Errorf("%w: odd field count %d", errMalformedJoinReply, len(pairs))
	}

	fields := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, nameOK := pairs[i].(string)
		value, valueOK := pairs[i+1].(string)
		if !nameOK || !valueOK {
			return nil, false, fmt.Errorf("%w: non-string field", errMalformedJoinReply)
		}
		fields[name] = value
	}

	return gameFromFields(fields), applied == 1, nil
}
