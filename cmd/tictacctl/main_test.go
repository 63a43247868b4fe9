package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tictac_arena/internal/logger"
	"tictac_arena/internal/service"
	"tictac_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"tictacctl"}, args...))
	return out.String(), err
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--secret", "s3cret", "--user-id", "42", "--username", "alice")
	require.NoError(t, err)

	jwts, err := service.NewJWTService("s3cret", time.Hour)
	require.NoError(t, err)
	id, err := jwts.ParseJWT(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, service.Identity{UserID: 42, Username: "alice"}, id)
}

func TestToken_RequiresUserID(t *testing.T) {
	_, err := run(t, "token", "--secret", "s3cret")
	assert.Error(t, err)
}

func TestSmoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwts, err := service.NewJWTService("s3cret", time.Hour)
	require.NoError(t, err)

	hub := ws.NewHub(ws.WithLogger(logger.Nop()))
	r := gin.New()
	r.GET("/ws", ws.HandleWS(hub, ws.Options{Tokens: jwts, Logger: logger.Nop()}))
	ts := httptest.NewServer(r)
	defer ts.Close()
	addr := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	t.Run("anonymous", func(t *testing.T) {
		out, err := run(t, "smoke", "--addr", addr, "--secret", "")
		require.NoError(t, err, out)
		assert.Contains(t, out, "game over: X wins on [0 1 2]")
	})
	t.Run("tokens", func(t *testing.T) {
		out, err := run(t, "smoke", "--addr", addr, "--secret", "s3cret")
		require.NoError(t, err, out)
		assert.Contains(t, out, "matched session=")
	})
}
