package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxLeaderboard = 100

// GetLeaderboard returns the top players by wins. ?limit= overrides the
// configured size up to 100.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	if h.Stats == nil {
		unavailable(c)
		return
	}

	limit := h.LeaderboardLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	limit = min(limit, maxLeaderboard)

	top, err := h.Stats.TopByWins(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}
