package ws

import (
	"bytes"
	"encoding/json"

	"tictac_arena/internal/game"
)

// client -> server

type UserConnectedPayload struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName,omitempty"`
}

type SeekPayload struct {
	Identifier string `json:"identifier"`
}

type MovePayload struct {
	SessionID  string `json:"sessionId"`
	Position   *int   `json:"position"`
	Identifier string `json:"identifier"`
}

// server -> client

type PlayerInfo struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
}

type MatchFoundPayload struct {
	SessionID string      `json:"sessionId"`
	Opponent  PlayerInfo  `json:"opponent"`
	Start     bool        `json:"start"`
	Symbol    game.Symbol `json:"symbol"`
}

type OpponentMovePayload struct {
	Position int         `json:"position"`
	Symbol   game.Symbol `json:"symbol"`
}

type TurnChangePayload struct {
	IsYourTurn bool `json:"isYourTurn"`
}

type OpponentDisconnectedPayload struct {
	SessionID string `json:"sessionId"`
}

type GameOverPayload struct {
	SessionID string      `json:"sessionId"`
	Winner    game.Symbol `json:"winner"`
	Draw      bool        `json:"draw"`
	Reason    string      `json:"reason"`
	Line      []int       `json:"line,omitempty"`
}

// decodeSeek accepts both {"identifier": "..."} and a bare JSON string.
func decodeSeek(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var id string
		err := json.Unmarshal(raw, &id)
		return id, err
	}
	var p SeekPayload
	err := json.Unmarshal(raw, &p)
	return p.Identifier, err
}
