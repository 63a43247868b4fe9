package repository

import (
	"context"
	"errors"
	"fmt"

	"tictac_arena/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, wins, losses, draws, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Wins, &u.Losses, &u.Draws, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and fills ID and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		u.Username,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetStats(ctx context.Context, id int64) (domain.PlayerStats, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.PlayerStats{}, err
	}
	return domain.NewPlayerStats(*u), nil
}

// RecordResult bumps one of wins, losses or draws.
func (r *UserRepository) RecordResult(ctx context.Context, id int64, res domain.MatchResult) error {
	return recordResult(ctx, r.db, id, res)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func recordResult(ctx context.Context, db execer, id int64, res domain.MatchResult) error {
	var column string
	switch res {
	case domain.MatchResultWin:
		column = "wins"
	case domain.MatchResultLoss:
		column = "losses"
	case domain.MatchResultDraw:
		column = "draws"
	default:
		return fmt.Errorf("unknown result %q", res)
	}

	tag, err := db.Exec(ctx,
		`UPDATE users SET `+column+` = `+column+` + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TopByWins returns the leaderboard ordered by wins desc.
func (r *UserRepository) TopByWins(ctx context.Context, limit int) ([]domain.PlayerStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY wins DESC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.PlayerStats
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, domain.NewPlayerStats(*u))
	}
	return res, rows.Err()
}
