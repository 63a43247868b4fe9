package ws

import "encoding/json"

const (
	// client -> server
	MsgUserConnected = "userConnected"
	MsgFindMatch     = "findMatch"
	MsgCancelMatch   = "cancelMatch"
	MsgMove          = "move"

	// server -> client
	MsgWaiting              = "waiting"
	MsgMatchFound           = "matchFound"
	MsgOpponentMove         = "opponentMove"
	MsgTurnChange           = "turnChange"
	MsgOpponentDisconnected = "opponentDisconnected"
	MsgGameOver             = "gameOver"
)

// Message is the envelope of every frame the server sends.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound is the envelope of client frames; the payload is decoded once the
// type is known.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Conn is a live connection the hub can push messages to. Send must not
// block; it reports false when the message was dropped.
type Conn interface {
	Send(msg Message) bool
}
