package http

import (
	"context"
	"log/slog"

	"tictac_arena/internal/config"
	"tictac_arena/internal/game"
	"tictac_arena/internal/http/handlers"
	"tictac_arena/internal/http/middleware"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/repository"
	"tictac_arena/internal/service"
	"tictac_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the router needs. DB and Redis are optional.
type Deps struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Hub     *ws.Hub
	JWT     *service.JWTService
	Bots    *game.Factory
	Version string
	Logger  *slog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = logger.Get()
	}

	h := handlers.NewHandler(nil, nil, d.Hub, d.Bots).WithLogger(log.With("component", "api"))
	h.LeaderboardLimit = cfg.LeaderboardLimit

	checks := map[string]handlers.Check{}
	if d.DB != nil {
		users := repository.NewUserRepository(d.DB)
		h.Auth = service.NewAuthService(users, d.JWT)
		h.Stats = users
		checks["database"] = d.DB.Ping
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}
	healthHandler := handlers.NewHealthHandler(d.Version, checks)

	limiter := middleware.NewRateLimiter(d.Redis, log.With("component", "ratelimit"))
	apiRL := limiter.Limit("api", cfg.APIRateLimit, cfg.APIRateWindow, middleware.ByIP)
	authRL := limiter.Limit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow, middleware.ByIP)
	// per user so players behind one NAT do not share a budget
	statsRL := limiter.Limit("stats", cfg.APIRateLimit, cfg.APIRateWindow, middleware.ByUser)
	jwtMW := middleware.JWT(d.JWT)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)
	registerAPIRoutes(v1, h, authRL, jwtMW, statsRL)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(apiRL)
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, authRL, jwtMW, statsRL)

	r.GET("/ws", ws.HandleWS(d.Hub, ws.Options{
		Tokens:        d.JWT,
		AuthRequired:  cfg.WSAuthRequired,
		AllowedOrigin: cfg.AllowedOrigin,
		SendBuffer:    cfg.WSSendBuffer,
		Logger:        log.With("component", "ws"),
	}))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, authRL, jwtMW, statsRL gin.HandlerFunc) {
	api.POST("/auth/register", authRL, h.Register)
	api.POST("/auth/login", authRL, h.Login)

	api.GET("/me/stats", jwtMW, h.MyStats)
	api.POST("/me/stats", jwtMW, statsRL, h.RecordMyResult)
	api.GET("/leaderboard", h.GetLeaderboard)

	api.POST("/game/bot/move", h.BotMove)
	api.GET("/lobby", h.LobbyStatus)
}
