package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

type Difficulty string

const (
	Easy       Difficulty = "easy"
	Medium     Difficulty = "medium"
	Hard       Difficulty = "hard"
	Impossible Difficulty = "impossible"
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrNoMove            = errors.New("no move available")
)

// Strategy picks the next cell for the computer player.
type Strategy interface {
	Difficulty() Difficulty
	Choose(b Board, me Symbol) (int, error)
}

type Factory struct {
	rng *rand.Rand
}

// NewFactory returns a factory whose random strategies draw from rng. A nil
// rng uses a freshly seeded source that is safe for concurrent use; a caller
// supplied rng is not guarded.
func NewFactory(rng *rand.Rand) *Factory {
	if rng == nil {
		rng = rand.New(&lockedSource{src: rand.NewPCG(rand.Uint64(), rand.Uint64())})
	}
	return &Factory{rng: rng}
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (f *Factory) CreateStrategy(d Difficulty) (Strategy, error) {
	switch d {
	case Easy:
		return &easyBot{rng: f.rng}, nil
	case Medium:
		return &mediumBot{rng: f.rng}, nil
	case Hard:
		return &hardBot{rng: f.rng}, nil
	case Impossible:
		return minimaxBot{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
}

type easyBot struct{ rng *rand.Rand }

func (b *easyBot) Difficulty() Difficulty { return Easy }

func (b *easyBot) Choose(board Board, _ Symbol) (int, error) {
	return randomCell(b.rng, board)
}

type mediumBot struct{ rng *rand.Rand }

func (b *mediumBot) Difficulty() Difficulty { return Medium }

func (b *mediumBot) Choose(board Board, me Symbol) (int, error) {
	if pos := completingCell(board, me); pos >= 0 {
		return pos, nil
	}
	return randomCell(b.rng, board)
}

type hardBot struct{ rng *rand.Rand }

func (b *hardBot) Difficulty() Difficulty { return Hard }

func (b *hardBot) Choose(board Board, me Symbol) (int, error) {
	if pos := completingCell(board, me); pos >= 0 {
		return pos, nil
	}
	if pos := completingCell(board, me.Other()); pos >= 0 {
		return pos, nil
	}
	return randomCell(b.rng, board)
}

type minimaxBot struct{}

func (minimaxBot) Difficulty() Difficulty { return Impossible }

func (minimaxBot) Choose(board Board, me Symbol) (int, error) {
	if len(board.EmptyCells()) == 0 {
		return -1, ErrNoMove
	}
	best, bestScore := -1, -1<<30
	for _, pos := range board.EmptyCells() {
		board[pos] = me
		score := -negamax(board, me.Other(), 1)
		board[pos] = Empty
		if score > bestScore {
			best, bestScore = pos, score
		}
	}
	return best, nil
}

// negamax scores the board from the point of view of the side to move.
// Faster wins and slower losses score higher.
func negamax(b Board, toMove Symbol, depth int) int {
	r := Evaluate(b)
	switch {
	case r.Winner == toMove:
		return 10 - depth
	case r.Winner != Empty:
		return depth - 10
	case r.Draw:
		return 0
	}
	best := -1 << 30
	for _, pos := range b.EmptyCells() {
		b[pos] = toMove
		if s := -negamax(b, toMove.Other(), depth+1); s > best {
			best = s
		}
		b[pos] = Empty
	}
	return best
}

// completingCell returns the first empty cell that completes a line for s,
// or -1.
func completingCell(b Board, s Symbol) int {
	for _, line := range winLines {
		mine, empty := 0, -1
		for _, i := range line {
			switch b[i] {
			case s:
				mine++
			case Empty:
				empty = i
			}
		}
		if mine == 2 && empty >= 0 {
			return empty
		}
	}
	return -1
}

func randomCell(rng *rand.Rand, b Board) (int, error) {
	cells := b.EmptyCells()
	if len(cells) == 0 {
		return -1, ErrNoMove
	}
	return cells[rng.IntN(len(cells))], nil
}
