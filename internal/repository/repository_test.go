package repository_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
	"tictac_arena/internal/repository"
	"tictac_arena/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories(t *testing.T) {
	pool := testutil.Postgres(t)
	users := repository.NewUserRepository(pool)
	matches := repository.NewMatchRepository(pool)
	ctx := context.Background()

	alice := &domain.User{Username: "alice", PasswordHash: "hash-a"}
	bob := &domain.User{Username: "bob", PasswordHash: "hash-b"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))
	require.NotZero(t, alice.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "x"})
		assert.ErrorIs(t, err, repository.ErrUsernameTaken)
	})

	t.Run("lookup", func(t *testing.T) {
		u, err := users.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, u.ID)
		assert.Equal(t, "hash-b", u.PasswordHash)

		_, err = users.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = users.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("save outcome updates counters", func(t *testing.T) {
		o := domain.Outcome{
			SessionID: "s1",
			Players: [2]domain.OutcomePlayer{
				{Identifier: strconv.FormatInt(alice.ID, 10), Symbol: game.X},
				{Identifier: strconv.FormatInt(bob.ID, 10), Symbol: game.O},
			},
			Winner:     game.X,
			Reason:     domain.ReasonLine,
			Board:      []string{"X", "X", "X", "O", "O", "", "", "", ""},
			FinishedAt: time.Now(),
		}
		m, err := matches.Save(ctx, o)
		require.NoError(t, err)
		assert.NotZero(t, m.ID)
		require.NotNil(t, m.WinnerSymbol)
		assert.Equal(t, "X", *m.WinnerSymbol)

		draw := o
		draw.SessionID = "s2"
		draw.Winner = game.Empty
		draw.Draw = true
		draw.Reason = domain.ReasonDraw
		_, err = matches.Save(ctx, draw)
		require.NoError(t, err)

		as, err := users.GetStats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, as.Wins)
		assert.Equal(t, 1, as.Draws)
		assert.Equal(t, 2, as.TotalGames)
		assert.Equal(t, 50.0, as.WinPercentage)

		bs, err := users.GetStats(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, bs.Losses)
		assert.Equal(t, 1, bs.Draws)
	})

	t.Run("guest identifiers are stored without counters", func(t *testing.T) {
		o := domain.Outcome{
			SessionID: "s3",
			Players: [2]domain.OutcomePlayer{
				{Identifier: "guest-1", Symbol: game.X},
				{Identifier: "424242", Symbol: game.O},
			},
			Winner: game.O,
			Reason: domain.ReasonForfeit,
		}
		_, err := matches.Save(ctx, o)
		require.NoError(t, err)

		list, err := matches.ListByPlayer(ctx, "guest-1", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domain.ReasonForfeit, list[0].Reason)
		assert.Equal(t, "424242", list[0].PlayerO)
	})

	t.Run("record single result and leaderboard", func(t *testing.T) {
		require.NoError(t, users.RecordResult(ctx, bob.ID, domain.MatchResultWin))
		require.NoError(t, users.RecordResult(ctx, bob.ID, domain.MatchResultWin))
		assert.ErrorIs(t, users.RecordResult(ctx, 999999, domain.MatchResultWin), repository.ErrNotFound)

		top, err := users.TopByWins(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "bob", top[0].Username)
		assert.Equal(t, 2, top[0].Wins)
		assert.Equal(t, "alice", top[1].Username)
	})
}
