package domain

import (
	"math"
	"time"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Wins         int       `db:"wins" json:"wins"`
	Losses       int       `db:"losses" json:"losses"`
	Draws        int       `db:"draws" json:"draws"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type PlayerStats struct {
	UserID        int64   `json:"user_id"`
	Username      string  `json:"username"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	TotalGames    int     `json:"total_games"`
	WinPercentage float64 `json:"win_percentage"`
}

// NewPlayerStats fills the derived fields. The percentage is rounded to two
// decimals and is 0 when no games were played.
func NewPlayerStats(u User) PlayerStats {
	total := u.Wins + u.Losses + u.Draws
	var pct float64
	if total > 0 {
		pct = math.Round(float64(u.Wins)/float64(total)*10000) / 100
	}
	return PlayerStats{
		UserID:        u.ID,
		Username:      u.Username,
		Wins:          u.Wins,
		Losses:        u.Losses,
		Draws:         u.Draws,
		TotalGames:    total,
		WinPercentage: pct,
	}
}
