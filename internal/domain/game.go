package domain

import (
	"time"

	"tictac_arena/internal/game"
)

// MatchResult - result of a finished match from one player's point of view
type MatchResult string

const (
	MatchResultWin  MatchResult = "win"
	MatchResultLoss MatchResult = "loss"
	MatchResultDraw MatchResult = "draw"
)

func (r MatchResult) Valid() bool {
	return r == MatchResultWin || r == MatchResultLoss || r == MatchResultDraw
}

// OutcomeReason - how a session ended
type OutcomeReason string

const (
	ReasonLine    OutcomeReason = "line"
	ReasonDraw    OutcomeReason = "draw"
	ReasonForfeit OutcomeReason = "forfeit"
)

type OutcomePlayer struct {
	Identifier  string      `json:"identifier"`
	DisplayName string      `json:"displayName"`
	Symbol      game.Symbol `json:"symbol"`
}

// Outcome - terminal result of a session. Winner is the symbol assigned at
// session creation, empty on a draw.
type Outcome struct {
	SessionID  string           `json:"sessionId"`
	Players    [2]OutcomePlayer `json:"players"`
	Winner     game.Symbol      `json:"winner"`
	Draw       bool             `json:"draw"`
	Reason     OutcomeReason    `json:"reason"`
	Board      []string         `json:"board"`
	FinishedAt time.Time        `json:"finishedAt"`
}

// ResultFor converts the outcome into a per-player result. ok is false when
// the identifier did not play in the session.
func (o Outcome) ResultFor(identifier string) (MatchResult, bool) {
	for _, p := range o.Players {
		if p.Identifier != identifier {
			continue
		}
		switch {
		case o.Draw:
			return MatchResultDraw, true
		case p.Symbol == o.Winner:
			return MatchResultWin, true
		default:
			return MatchResultLoss, true
		}
	}
	return "", false
}

// PlayerBySymbol returns the player holding s.
func (o Outcome) PlayerBySymbol(s game.Symbol) (OutcomePlayer, bool) {
	for _, p := range o.Players {
		if p.Symbol == s {
			return p, true
		}
	}
	return OutcomePlayer{}, false
}

// Match - persisted outcome row
type Match struct {
	ID           int64         `db:"id" json:"id"`
	SessionID    string        `db:"session_id" json:"session_id"`
	PlayerX      string        `db:"player_x" json:"player_x"`
	PlayerO      string        `db:"player_o" json:"player_o"`
	WinnerSymbol *string       `db:"winner_symbol" json:"winner_symbol,omitempty"`
	Reason       OutcomeReason `db:"reason" json:"reason"`
	Board        []string      `db:"board" json:"board"`
	FinishedAt   time.Time     `db:"finished_at" json:"finished_at"`
}
