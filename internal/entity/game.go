package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	StateCreated = "created"
	StateJoined  = "joined"
)

// Game is a lobby session record. Other stays nil until a second player joins.
type Game struct {
	ID        string          `json:"id"`
	Host      string          `json:"host"`
	Other     *string         `json:"other"`
	GameState json.RawMessage `json:"gameState"`
}

func NewGame(id, host string, state json.RawMessage) *Game {
	return &Game{
		ID:        id,
		Host:      host,
		Other:     nil,
		GameState: state,
	}
}

// IsJoined - any non-null other counts, the stores' conditional writes treat "" as taken too.
func (that *Game) IsJoined() bool {
	return that.Other != nil
}

func (that *Game) State() string {
	if that.IsJoined() {
		return StateJoined
	}
	return StateCreated
}

// IsEmptyState - reports whether raw carries no usable payload. Invalid JSON counts as empty, as do
// null, false, "" and any number whose value is zero.
func IsEmptyState(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return true
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return true
	}

	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case json.Number:
		// out of range literals parse to ±Inf or 0 alongside an error, which is the value we want
		f, _ := strconv.ParseFloat(v.String(), 64)
		return f == 0
	case string:
		return v == ""
	default:
		return false
	}
}
