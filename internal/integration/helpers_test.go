package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tictac_arena/internal/config"
	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
	httpserver "tictac_arena/internal/http"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/outcome"
	"tictac_arena/internal/service"
	"tictac_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const secret = "integration-secret"

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type recorder struct {
	mu  sync.Mutex
	got []domain.Outcome
}

func (r *recorder) Record(_ context.Context, o domain.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, o)
	return nil
}

func (r *recorder) list() []domain.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Outcome(nil), r.got...)
}

type server struct {
	ts  *httptest.Server
	hub *ws.Hub
	jwt *service.JWTService
}

func startServer(t *testing.T, env map[string]string, db *pgxpool.Pool, sink outcome.Sink) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env["JWT_SECRET"] = secret
	cfg, err := config.FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	jwts, err := service.NewJWTService(cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	hub := ws.NewHub(ws.WithSink(sink), ws.WithLogger(logger.Nop()))
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Config:  cfg,
		DB:      db,
		Hub:     hub,
		JWT:     jwts,
		Bots:    game.NewFactory(nil),
		Version: "test",
		Logger:  logger.Nop(),
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return &server{ts: ts, hub: hub, jwt: jwts}
}

func (s *server) wsURL(token string) string {
	u := strings.Replace(s.ts.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func (s *server) token(t *testing.T, id int64, name string) string {
	t.Helper()
	tok, err := s.jwt.GenerateJWT(id, name)
	require.NoError(t, err)
	return tok
}

// client reads on one goroutine so ReadMessage is never called concurrently.
type client struct {
	conn *websocket.Conn
	in   chan frame
}

func dial(t *testing.T, url string) *client {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &client{conn: conn, in: make(chan frame, 32)}
	go func() {
		defer close(c.in)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f frame
			if json.Unmarshal(msg, &f) == nil {
				c.in <- f
			}
		}
	}()
	return c
}

func (c *client) send(t *testing.T, typ string, payload any) {
	t.Helper()
	require.NoError(t, c.conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

// expect skips frames until one of type typ arrives and decodes its payload
// into out.
func (c *client) expect(t *testing.T, typ string, out any) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case f, ok := <-c.in:
			require.True(t, ok, "connection closed waiting for %s", typ)
			if f.Type != typ {
				continue
			}
			if out != nil {
				require.NoError(t, json.Unmarshal(f.Payload, out))
			}
			return
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}
