package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tictac_arena/internal/domain"

	"github.com/nats-io/nats.go"
)

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher announces outcomes on a NATS subject as JSON.
type Publisher struct {
	conn    msgPublisher
	subject string
}

func NewPublisher(conn msgPublisher, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Connect dials NATS with unlimited reconnects.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("tictac_arena"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
	)
}

func (p *Publisher) Record(ctx context.Context, o domain.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, o.SessionID)
	msg.Header.Set("Tictac-Reason", string(o.Reason))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish outcome %s: %w", o.SessionID, err)
	}
	return nil
}
