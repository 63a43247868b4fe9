package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tictac_arena/internal/game"

	"github.com/gin-gonic/gin"
)

type BotMoveRequest struct {
	Board      []string    `json:"board" binding:"required"`
	Difficulty string      `json:"difficulty" binding:"required"`
	Symbol     game.Symbol `json:"symbol"`
}

type BotOutcome struct {
	Finished bool        `json:"finished"`
	Winner   game.Symbol `json:"winner"`
	Draw     bool        `json:"draw"`
	Line     []int       `json:"line,omitempty"`
}

type BotMoveResponse struct {
	Position int        `json:"position"`
	Board    []string   `json:"board"`
	Outcome  BotOutcome `json:"outcome"`
}

// BotMove plays one computer move on the posted board. The bot plays the
// side whose turn it is; an explicit symbol must agree with that.
func (h *Handler) BotMove(c *gin.Context) {
	var req BotMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if game.Evaluate(board).Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game is already over"})
		return
	}

	me := board.Next()
	if sym := game.Symbol(strings.ToUpper(string(req.Symbol))); sym != game.Empty && sym != me {
		c.JSON(http.StatusBadRequest, gin.H{"error": "it is " + string(me) + "'s turn"})
		return
	}

	bot, err := h.Bots.CreateStrategy(game.Difficulty(req.Difficulty))
	if errors.Is(err, game.ErrUnknownDifficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium, hard or impossible"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bot unavailable"})
		return
	}

	pos, err := bot.Choose(board, me)
	if err != nil {
		h.log.Error("bot move", "difficulty", req.Difficulty, "board", board.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bot could not move"})
		return
	}
	board[pos] = me

	res := game.Evaluate(board)
	c.JSON(http.StatusOK, BotMoveResponse{
		Position: pos,
		Board:    board.Strings(),
		Outcome: BotOutcome{
			Finished: res.Terminal(),
			Winner:   res.Winner,
			Draw:     res.Draw,
			Line:     res.Line,
		},
	})
}
