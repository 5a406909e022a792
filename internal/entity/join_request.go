package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
)

type JoinRequest struct {
	GameID string `json:"gameId"`
}

// ParseJoinRequest - decodes a join body, requiring gameId to be a JSON string.
func ParseJoinRequest(body []byte) (*JoinRequest, error) {
	var raw struct {
		GameID json.RawMessage `json:"gameId"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: could not decode join request: %w", apperror.ErrBadRequest, err)
	}

	var gameID string
	// null decodes into a string without error, so check the token kind first
	if len(raw.GameID) == 0 || raw.GameID[0] != '"' || json.Unmarshal(raw.GameID, &gameID) != nil {
		return nil, apperror.ErrInvalidGameID
	}

	return &JoinRequest{GameID: gameID}, nil
}
