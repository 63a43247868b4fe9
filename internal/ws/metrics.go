package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	waitingPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tictac_waiting_players",
		Help: "Players currently in the waiting queue",
	})
	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tictac_active_sessions",
		Help: "Sessions in the session table, finished ones included until reaped",
	})
	matchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tictac_matches_total",
		Help: "Sessions created by the matchmaker",
	})
	movesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictac_moves_total",
			Help: "Submitted moves by result",
		},
		[]string{"result"},
	)
	disconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictac_disconnects_total",
			Help: "Connection losses by the state the player was in",
		},
		[]string{"state"},
	)
	outcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictac_outcomes_total",
			Help: "Finished sessions by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(waitingPlayers, activeSessions, matchesTotal, movesTotal, disconnectsTotal, outcomesTotal)
}

func moveLabel(err error) string {
	switch err {
	case nil:
		return "accepted"
	case ErrUnknownSession:
		return "unknown_session"
	case ErrOutOfRange:
		return "out_of_range"
	case ErrCellOccupied:
		return "occupied"
	case ErrGameOver:
		return "game_over"
	case ErrNotYourTurn:
		return "not_your_turn"
	default:
		return "other"
	}
}
