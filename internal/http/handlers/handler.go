package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/ws"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// StatsStore is the part of the user repository the stats endpoints use.
type StatsStore interface {
	GetStats(ctx context.Context, id int64) (domain.PlayerStats, error)
	RecordResult(ctx context.Context, id int64, res domain.MatchResult) error
	TopByWins(ctx context.Context, limit int) ([]domain.PlayerStats, error)
}

type Lobby interface {
	Stats() ws.LobbyStats
}

// Handler serves the REST API. Auth and Stats are nil when no database is
// configured; their endpoints then answer 503.
type Handler struct {
	Auth             Authenticator
	Stats            StatsStore
	Lobby            Lobby
	Bots             *game.Factory
	LeaderboardLimit int

	log *slog.Logger
}

func NewHandler(auth Authenticator, stats StatsStore, lobby Lobby, bots *game.Factory) *Handler {
	if bots == nil {
		bots = game.NewFactory(nil)
	}
	return &Handler{
		Auth:             auth,
		Stats:            stats,
		Lobby:            lobby,
		Bots:             bots,
		LeaderboardLimit: 10,
		log:              logger.With("component", "api"),
	}
}

func (h *Handler) WithLogger(l *slog.Logger) *Handler {
	h.log = l
	return h
}

func unavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
}
