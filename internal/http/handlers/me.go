package handlers

import (
	"errors"
	"net/http"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/http/middleware"
	"tictac_arena/internal/repository"

	"github.com/gin-gonic/gin"
)

// MyStats returns the caller's win/loss/draw record.
func (h *Handler) MyStats(c *gin.Context) {
	if h.Stats == nil {
		unavailable(c)
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Stats.GetStats(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.log.Error("get stats", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type recordRequest struct {
	Result domain.MatchResult `json:"result" binding:"required"`
}

// RecordMyResult adds one result to the caller's record. Offline games
// against the computer report through here.
func (h *Handler) RecordMyResult(c *gin.Context) {
	if h.Stats == nil {
		unavailable(c)
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Result.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "result must be win, loss or draw"})
		return
	}

	ctx := c.Request.Context()
	err := h.Stats.RecordResult(ctx, userID, req.Result)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.log.Error("record result", "user_id", userID, "result", req.Result, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update stats"})
		return
	}

	stats, err := h.Stats.GetStats(ctx, userID)
	if err != nil {
		h.log.Error("get stats", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
