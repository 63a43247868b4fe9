package outcome

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
	"tictac_arena/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id string) domain.Outcome {
	return domain.Outcome{
		SessionID: id,
		Players: [2]domain.OutcomePlayer{
			{Identifier: "alice", Symbol: game.X},
			{Identifier: "bob", Symbol: game.O},
		},
		Winner: game.X,
		Reason: domain.ReasonLine,
	}
}

type recorder struct {
	mu   sync.Mutex
	got  []domain.Outcome
	err  error
	gate chan struct{}
}

func (r *recorder) Record(_ context.Context, o domain.Outcome) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, o)
	return r.err
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, o := range r.got {
		out = append(out, o.SessionID)
	}
	return out
}

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	err := Multi{a, b}.Record(context.Background(), sample("s1"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"s1"}, a.ids())
	assert.Equal(t, []string{"s1"}, b.ids())

	assert.NoError(t, Multi{}.Record(context.Background(), sample("s2")))
	assert.NoError(t, Discard.Record(context.Background(), sample("s3")))
}

type fakeSaver struct {
	err error
	got []domain.Outcome
}

func (f *fakeSaver) Save(_ context.Context, o domain.Outcome) (*domain.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, o)
	return &domain.Match{ID: int64(len(f.got)), SessionID: o.SessionID}, nil
}

func TestStore(t *testing.T) {
	saver := &fakeSaver{}
	s := NewStore(saver, logger.Nop())
	require.NoError(t, s.Record(context.Background(), sample("s1")))
	assert.Len(t, saver.got, 1)

	saver.err = errors.New("db down")
	err := s.Record(context.Background(), sample("s2"))
	assert.ErrorContains(t, err, "s2")
	assert.ErrorIs(t, err, saver.err)
}

type fakeConn struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestPublisher(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "tictac.outcomes")
	require.NoError(t, p.Record(context.Background(), sample("s1")))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "tictac.outcomes", msg.Subject)
	assert.Equal(t, "s1", msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "line", msg.Header.Get("Tictac-Reason"))

	var decoded domain.Outcome
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, game.X, decoded.Winner)
	assert.Equal(t, "bob", decoded.Players[1].Identifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Record(ctx, sample("s2")), context.Canceled)
}

func TestAsync_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 8, time.Second, logger.Nop())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, a.Record(context.Background(), sample(id)))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, []string{"a", "b", "c"}, rec.ids())

	assert.ErrorIs(t, a.Record(context.Background(), sample("d")), ErrClosed)
}

func TestAsync_FullQueueDrops(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	a := NewAsync(rec, 1, time.Second, logger.Nop())

	// the worker takes the first and blocks on the gate, the second fills the
	// queue, the third has nowhere to go
	require.NoError(t, a.Record(context.Background(), sample("1")))
	require.Eventually(t, func() bool { return len(a.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, a.Record(context.Background(), sample("2")))
	assert.ErrorIs(t, a.Record(context.Background(), sample("3")), ErrQueueFull)

	close(rec.gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, []string{"1", "2"}, rec.ids())
}
