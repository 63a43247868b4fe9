package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/logger"
	"tictac_arena/internal/outcome"

	"github.com/google/uuid"
)

// Hub owns the connection registry, the waiting queue and the session table.
// Every mutation happens under one mutex, so matchmaking, moves and
// disconnects are applied one at a time. Messages are pushed with Conn.Send,
// which never blocks.
type Hub struct {
	mu       sync.Mutex
	registry *Registry
	queue    Queue
	sessions map[string]*Session
	byPlayer map[string]string // identifier -> session id

	sink   outcome.Sink
	log    *slog.Logger
	linger time.Duration
	now    func() time.Time
	newID  func() string
}

type Option func(*Hub)

// WithSink sets where finished sessions are reported. The sink is called
// outside the hub lock.
func WithSink(s outcome.Sink) Option {
	return func(h *Hub) { h.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// WithLinger sets how long a finished session stays readable before the
// reaper removes it.
func WithLinger(d time.Duration) Option {
	return func(h *Hub) { h.linger = d }
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(h *Hub) { h.newID = gen }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		registry: NewRegistry(),
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
		sink:     outcome.Discard,
		linger:   2 * time.Minute,
		now:      time.Now,
		newID:    shortID,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.With("component", "hub")
	}
	return h
}

func shortID() string {
	return uuid.New().String()[:8]
}

// Register binds id to conn. A later Register for the same id replaces the
// connection.
func (h *Hub) Register(id, displayName string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.registry.Register(id, conn, displayName)
	h.log.Info("player connected", "id", id, "connected", h.registry.Len())
}

// Unregister drops id as if its connection went away: it leaves the queue,
// and an in-progress session ends as a forfeit.
func (h *Hub) Unregister(id string) {
	h.Disconnect(id, nil)
}

func (h *Hub) Lookup(id string) (Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Lookup(id)
}

// SeekMatch pairs id with the longest-waiting other player, or queues it.
// A player whose session is finished leaves it first; a player in a session
// still being played is rejected with ErrInSession.
func (h *Hub) SeekMatch(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sid, ok := h.byPlayer[id]; ok {
		s := h.sessions[sid]
		if !s.Terminal() {
			h.log.Info("seek rejected", "id", id, "session", sid, "reason", ErrInSession)
			return ErrInSession
		}
		h.removeSession(s)
	}

	h.queue.Remove(id)
	if other, ok := h.queue.PopFirstExcept(id); ok {
		h.startSession(other, id)
	} else {
		h.queue.Push(id)
		h.send(id, Message{Type: MsgWaiting})
		h.log.Info("player waiting", "id", id, "queue", h.queue.Len())
	}
	h.observe()
	return nil
}

// CancelSeek takes id out of the queue. It reports whether id was queued.
func (h *Hub) CancelSeek(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := h.queue.Remove(id)
	if removed {
		h.log.Info("seek cancelled", "id", id)
		h.observe()
	}
	return removed
}

func (h *Hub) startSession(first, second string) {
	sid := h.allocID()
	s := newSession(sid,
		Player{Identifier: first, DisplayName: h.registry.DisplayName(first)},
		Player{Identifier: second, DisplayName: h.registry.DisplayName(second)},
		h.now(),
	)
	h.sessions[sid] = s
	h.byPlayer[first] = sid
	h.byPlayer[second] = sid
	matchesTotal.Inc()

	h.log.Info("match created", "session", sid, "x", first, "o", second)

	for i, p := range s.Players {
		opp := s.Players[1-i]
		h.send(p.Identifier, Message{Type: MsgMatchFound, Payload: MatchFoundPayload{
			SessionID: sid,
			Opponent:  PlayerInfo{Identifier: opp.Identifier, DisplayName: opp.DisplayName},
			Start:     s.TurnOwner == p.Identifier,
			Symbol:    p.Symbol,
		}})
	}
}

func (h *Hub) allocID() string {
	for {
		id := h.newID()
		if _, taken := h.sessions[id]; id != "" && !taken {
			return id
		}
	}
}

// SubmitMove plays position for id in the session. A rejected move changes
// nothing and notifies nobody; the reason is returned and logged.
func (h *Hub) SubmitMove(sessionID string, position int, id string) error {
	h.mu.Lock()

	var (
		mover Player
		err   error
	)
	s, ok := h.sessions[sessionID]
	if !ok {
		err = ErrUnknownSession
	} else {
		mover, err = s.apply(position, id, h.now())
	}
	movesTotal.WithLabelValues(moveLabel(err)).Inc()
	if err != nil {
		h.mu.Unlock()
		h.log.Info("move rejected", "session", sessionID, "id", id, "position", position, "reason", err)
		return err
	}

	opp, _ := s.Opponent(id)
	h.send(opp.Identifier, Message{Type: MsgOpponentMove, Payload: OpponentMovePayload{Position: position, Symbol: mover.Symbol}})
	h.send(id, Message{Type: MsgTurnChange, Payload: TurnChangePayload{IsYourTurn: false}})
	h.send(opp.Identifier, Message{Type: MsgTurnChange, Payload: TurnChangePayload{IsYourTurn: true}})
	h.log.Debug("move accepted", "session", sessionID, "id", id, "position", position, "board", s.Board.String())

	var finished *domain.Outcome
	if s.Terminal() {
		o := s.outcome(reasonFor(s.Result))
		finished = &o
		over := Message{Type: MsgGameOver, Payload: GameOverPayload{
			SessionID: s.ID,
			Winner:    s.Result.Winner,
			Draw:      s.Result.Draw,
			Reason:    string(o.Reason),
			Line:      s.Result.Line,
		}}
		for _, p := range s.Players {
			h.send(p.Identifier, over)
		}
		outcomesTotal.WithLabelValues(string(o.Reason)).Inc()
		h.log.Info("game over", "session", s.ID, "winner", s.Result.Winner, "draw", s.Result.Draw)
	}
	h.mu.Unlock()

	if finished != nil {
		h.record(*finished)
	}
	return nil
}

// Disconnect handles the loss of id's connection. conn is the connection
// that went away; when the registry already holds a newer connection for id
// the call is ignored. A nil conn always applies.
func (h *Hub) Disconnect(id string, conn Conn) {
	h.mu.Lock()

	if cur, ok := h.registry.Lookup(id); ok && conn != nil && cur != conn {
		h.mu.Unlock()
		h.log.Debug("stale disconnect ignored", "id", id)
		return
	}

	state := "idle"
	var forfeit *domain.Outcome
	if h.queue.Remove(id) {
		state = "waiting"
	} else if sid, ok := h.byPlayer[id]; ok {
		state = "in_session"
		s := h.sessions[sid]
		if opp, ok := s.Opponent(id); ok {
			h.send(opp.Identifier, Message{Type: MsgOpponentDisconnected, Payload: OpponentDisconnectedPayload{SessionID: sid}})
		}
		if !s.Terminal() {
			s.forfeit(id, h.now())
			o := s.outcome(domain.ReasonForfeit)
			forfeit = &o
			outcomesTotal.WithLabelValues(string(o.Reason)).Inc()
		}
		h.removeSession(s)
		h.log.Info("session ended by disconnect", "session", sid, "id", id)
	}

	h.registry.Unregister(id)
	disconnectsTotal.WithLabelValues(state).Inc()
	h.observe()
	h.mu.Unlock()

	h.log.Info("player disconnected", "id", id, "state", state)
	if forfeit != nil {
		h.record(*forfeit)
	}
}

func (h *Hub) removeSession(s *Session) {
	delete(h.sessions, s.ID)
	for _, p := range s.Players {
		if h.byPlayer[p.Identifier] == s.ID {
			delete(h.byPlayer, p.Identifier)
		}
	}
}

// Cleanup removes finished sessions older than the linger period and
// returns how many were removed.
func (h *Hub) Cleanup() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	removed := 0
	for _, s := range h.sessions {
		if s.Terminal() && now.Sub(s.FinishedAt) >= h.linger {
			h.removeSession(s)
			removed++
		}
	}
	if removed > 0 {
		h.observe()
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (h *Hub) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := h.Cleanup(); n > 0 {
					h.log.Info("reaped finished sessions", "count", n)
				}
			}
		}
	}()
}

type LobbyStats struct {
	Waiting   int `json:"waiting"`
	Sessions  int `json:"sessions"`
	Connected int `json:"connected"`
}

func (h *Hub) Stats() LobbyStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return LobbyStats{
		Waiting:   h.queue.Len(),
		Sessions:  len(h.sessions),
		Connected: h.registry.Len(),
	}
}

// Session returns a copy of the session.
func (h *Hub) Session(id string) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// SessionOf returns a copy of the session id plays in.
func (h *Hub) SessionOf(id string) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[h.byPlayer[id]]
	if !ok || !s.Has(id) {
		return Session{}, false
	}
	return *s, true
}

func (h *Hub) Waiting() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue.Snapshot()
}

func (h *Hub) send(id string, msg Message) bool {
	conn, ok := h.registry.Lookup(id)
	if !ok {
		h.log.Debug("message undeliverable", "id", id, "type", msg.Type, "reason", ErrNotConnected)
		return false
	}
	if !conn.Send(msg) {
		h.log.Warn("message dropped", "id", id, "type", msg.Type)
		return false
	}
	return true
}

func (h *Hub) record(o domain.Outcome) {
	if err := h.sink.Record(context.Background(), o); err != nil {
		h.log.Error("record outcome", "session", o.SessionID, "error", err)
	}
}

func (h *Hub) observe() {
	waitingPlayers.Set(float64(h.queue.Len()))
	activeSessions.Set(float64(len(h.sessions)))
}
