package outcome

import (
	"context"
	"fmt"
	"log/slog"

	"tictac_arena/internal/domain"
)

type matchSaver interface {
	Save(ctx context.Context, o domain.Outcome) (*domain.Match, error)
}

// Store persists outcomes through the match repository.
type Store struct {
	matches matchSaver
	log     *slog.Logger
}

func NewStore(matches matchSaver, log *slog.Logger) *Store {
	return &Store{matches: matches, log: log}
}

func (s *Store) Record(ctx context.Context, o domain.Outcome) error {
	m, err := s.matches.Save(ctx, o)
	if err != nil {
		return fmt.Errorf("store outcome %s: %w", o.SessionID, err)
	}
	s.log.Debug("outcome stored", "session", o.SessionID, "match_id", m.ID, "reason", o.Reason)
	return nil
}
