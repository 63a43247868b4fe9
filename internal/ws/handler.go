package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"tictac_arena/internal/logger"
	"tictac_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type TokenParser interface {
	ParseJWT(token string) (service.Identity, error)
}

type Options struct {
	// Tokens verifies the token query parameter or bearer header. With a nil
	// parser every connection is anonymous and binds itself by frame.
	Tokens        TokenParser
	AuthRequired  bool
	AllowedOrigin string
	SendBuffer    int
	Logger        *slog.Logger
}

// HandleWS upgrades the request and runs a client on the hub. A valid token
// binds the connection to the token's user for its whole life.
func HandleWS(hub *Hub, opts Options) gin.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = logger.With("component", "ws")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if opts.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == opts.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		var (
			identity service.Identity
			authed   bool
		)
		if token != "" && opts.Tokens != nil {
			id, err := opts.Tokens.ParseJWT(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			identity, authed = id, true
		}
		if opts.AuthRequired && !authed {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("ws upgrade failed", "error", err, "remote", c.ClientIP())
			return
		}

		client := NewClient(hub, conn, opts.SendBuffer, log.With("remote", c.ClientIP()))
		if authed {
			client.Bind(identity.Identifier(), identity.Username)
		}
		go client.Run()
	}
}
