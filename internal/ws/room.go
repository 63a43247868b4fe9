package ws

import (
	"errors"
	"time"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
)

// Rejection reasons for hub operations. They are logged, never sent to the
// client.
var (
	ErrUnknownSession = errors.New("unknown session")
	ErrOutOfRange     = errors.New("position out of range")
	ErrCellOccupied   = errors.New("cell already occupied")
	ErrGameOver       = errors.New("game is over")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotConnected   = errors.New("identifier has no live connection")
	ErrInSession      = errors.New("player is in a session in progress")
)

type SessionState string

const (
	StatePlaying  SessionState = "playing"
	StateFinished SessionState = "finished"
)

type Player struct {
	Identifier  string      `json:"identifier"`
	DisplayName string      `json:"displayName"`
	Symbol      game.Symbol `json:"symbol"`
}

// Session is one two-player game. Players[0] holds X and moves first.
type Session struct {
	ID         string       `json:"sessionId"`
	Players    [2]Player    `json:"players"`
	TurnOwner  string       `json:"turnOwner"`
	Board      game.Board   `json:"board"`
	State      SessionState `json:"state"`
	Result     game.Result  `json:"-"`
	CreatedAt  time.Time    `json:"createdAt"`
	FinishedAt time.Time    `json:"finishedAt,omitzero"`
}

func newSession(id string, first, second Player, now time.Time) *Session {
	first.Symbol = game.X
	second.Symbol = game.O
	return &Session{
		ID:        id,
		Players:   [2]Player{first, second},
		TurnOwner: first.Identifier,
		State:     StatePlaying,
		CreatedAt: now,
	}
}

func (s *Session) index(id string) int {
	for i, p := range s.Players {
		if p.Identifier == id {
			return i
		}
	}
	return -1
}

func (s *Session) Has(id string) bool {
	return s.index(id) >= 0
}

// Opponent returns the other player of id.
func (s *Session) Opponent(id string) (Player, bool) {
	i := s.index(id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[1-i], true
}

func (s *Session) Terminal() bool {
	return s.State == StateFinished
}

// apply validates and plays a move for id. The turn passes to the opponent
// even on the finishing move.
func (s *Session) apply(pos int, id string, now time.Time) (Player, error) {
	if pos < 0 || pos >= game.Cells {
		return Player{}, ErrOutOfRange
	}
	if s.Terminal() {
		return Player{}, ErrGameOver
	}
	if s.Board[pos] != game.Empty {
		return Player{}, ErrCellOccupied
	}
	i := s.index(id)
	if i < 0 || s.TurnOwner != id {
		return Player{}, ErrNotYourTurn
	}

	mover := s.Players[i]
	s.Board[pos] = mover.Symbol
	s.TurnOwner = s.Players[1-i].Identifier

	if r := game.Evaluate(s.Board); r.Terminal() {
		s.finish(r, now)
	}
	return mover, nil
}

func (s *Session) finish(r game.Result, now time.Time) {
	s.Result = r
	s.State = StateFinished
	s.FinishedAt = now
}

// forfeit ends the session with the player other than leaver as winner.
func (s *Session) forfeit(leaver string, now time.Time) {
	other, _ := s.Opponent(leaver)
	s.finish(game.Result{Winner: other.Symbol}, now)
}

func (s *Session) outcome(reason domain.OutcomeReason) domain.Outcome {
	o := domain.Outcome{
		SessionID:  s.ID,
		Winner:     s.Result.Winner,
		Draw:       s.Result.Draw,
		Reason:     reason,
		Board:      s.Board.Strings(),
		FinishedAt: s.FinishedAt,
	}
	for i, p := range s.Players {
		o.Players[i] = domain.OutcomePlayer{
			Identifier:  p.Identifier,
			DisplayName: p.DisplayName,
			Symbol:      p.Symbol,
		}
	}
	return o
}

func reasonFor(r game.Result) domain.OutcomeReason {
	if r.Draw {
		return domain.ReasonDraw
	}
	return domain.ReasonLine
}
