package game

import (
	"errors"
	"fmt"
	"strings"
)

// Symbol is the mark a player places on the board.
type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

// Other returns the opposing symbol. Empty maps to Empty.
func (s Symbol) Other() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (s Symbol) Valid() bool {
	return s == X || s == O
}

const Cells = 9

// Board is a 3x3 grid indexed row-major, 0..8.
type Board [Cells]Symbol

var (
	ErrBadLength = errors.New("board must have 9 cells")
	ErrBadCell   = errors.New("board cell must be X, O or empty")
	ErrBadCounts = errors.New("illegal number of X and O marks")
)

// the eight lines that win a game
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Result is the evaluation of a board. Winner is Empty while the game is on
// and on a draw.
type Result struct {
	Winner Symbol
	Draw   bool
	Line   []int
}

func (r Result) Terminal() bool {
	return r.Winner != Empty || r.Draw
}

// Evaluate reports the winner if any line is complete, a draw if the board is
// full with no complete line, and an open result otherwise.
func Evaluate(b Board) Result {
	for _, line := range winLines {
		s := b[line[0]]
		if s != Empty && s == b[line[1]] && s == b[line[2]] {
			return Result{Winner: s, Line: []int{line[0], line[1], line[2]}}
		}
	}
	if b.Full() {
		return Result{Draw: true}
	}
	return Result{}
}

func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

func (b Board) EmptyCells() []int {
	out := make([]int, 0, Cells)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

func (b Board) Count(s Symbol) int {
	n := 0
	for _, c := range b {
		if c == s {
			n++
		}
	}
	return n
}

// Valid reports whether the board could arise from X moving first and the
// players alternating.
func (b Board) Valid() bool {
	d := b.Count(X) - b.Count(O)
	return d == 0 || d == 1
}

// Next returns the symbol that moves next on a valid board.
func (b Board) Next() Symbol {
	if b.Count(X) > b.Count(O) {
		return O
	}
	return X
}

func (b Board) Strings() []string {
	out := make([]string, Cells)
	for i, c := range b {
		out[i] = string(c)
	}
	return out
}

func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if c == Empty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(c))
		}
		if i%3 == 2 && i != Cells-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ParseBoard builds a board from client cells. Cells are matched case
// insensitively and surrounding whitespace is ignored.
func ParseBoard(cells []string) (Board, error) {
	var b Board
	if len(cells) != Cells {
		return b, fmt.Errorf("%w: got %d", ErrBadLength, len(cells))
	}
	for i, raw := range cells {
		switch Symbol(strings.ToUpper(strings.TrimSpace(raw))) {
		case X:
			b[i] = X
		case O:
			b[i] = O
		case Empty:
			b[i] = Empty
		default:
			return b, fmt.Errorf("%w: cell %d is %q", ErrBadCell, i, raw)
		}
	}
	if !b.Valid() {
		return b, ErrBadCounts
	}
	return b, nil
}
