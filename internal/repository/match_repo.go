package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Save stores the outcome and updates the win/loss/draw counters of the
// players whose identifier is a registered user id, all in one transaction.
// Identifiers that are not user ids are stored on the match row only.
func (r *MatchRepository) Save(ctx context.Context, o domain.Outcome) (*domain.Match, error) {
	m := &domain.Match{
		SessionID: o.SessionID,
		Reason:    o.Reason,
		Board:     o.Board,
	}
	if px, ok := o.PlayerBySymbol(game.X); ok {
		m.PlayerX = px.Identifier
	}
	if po, ok := o.PlayerBySymbol(game.O); ok {
		m.PlayerO = po.Identifier
	}
	if o.Winner != game.Empty {
		w := string(o.Winner)
		m.WinnerSymbol = &w
	}
	if m.Board == nil {
		m.Board = []string{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO matches (session_id, player_x, player_o, winner_symbol, reason, board, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 RETURNING id, finished_at`,
		m.SessionID,
		m.PlayerX,
		m.PlayerO,
		m.WinnerSymbol,
		string(m.Reason),
		m.Board,
		nullTime(o),
	).Scan(&m.ID, &m.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}

	for _, p := range o.Players {
		userID, err := strconv.ParseInt(p.Identifier, 10, 64)
		if err != nil {
			continue
		}
		res, _ := o.ResultFor(p.Identifier)
		if err := recordResult(ctx, tx, userID, res); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func nullTime(o domain.Outcome) any {
	if o.FinishedAt.IsZero() {
		return nil
	}
	return o.FinishedAt
}

// ListByPlayer returns the most recent matches of an identifier.
func (r *MatchRepository) ListByPlayer(ctx context.Context, identifier string, limit int) ([]*domain.Match, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, player_x, player_o, winner_symbol, reason, board, finished_at
		 FROM matches
		 WHERE player_x = $1 OR player_o = $1
		 ORDER BY finished_at DESC, id DESC
		 LIMIT $2`,
		identifier, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		var m domain.Match
		var reason string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.PlayerX, &m.PlayerO, &m.WinnerSymbol, &reason, &m.Board, &m.FinishedAt); err != nil {
			return nil, err
		}
		m.Reason = domain.OutcomeReason(reason)
		res = append(res, &m)
	}
	return res, rows.Err()
}
