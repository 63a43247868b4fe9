package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) LobbyStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Lobby.Stats())
}
