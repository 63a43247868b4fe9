package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var ErrIdentityMismatch = errors.New("identifier does not match the connection")

// Client is one WebSocket connection. The read loop decodes frames and calls
// the hub; the write loop drains the outbox.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	log  *slog.Logger

	// identity is bound at upgrade for authenticated connections, otherwise by
	// the first userConnected or findMatch frame. Only the read loop touches it.
	identity    string
	displayName string
}

func NewClient(hub *Hub, conn *websocket.Conn, sendBuffer int, log *slog.Logger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// Bind fixes the client identity and registers it with the hub.
func (c *Client) Bind(identifier, displayName string) {
	if c.identity != identifier {
		c.log = c.log.With("id", identifier)
	}
	c.identity = identifier
	c.displayName = displayName
	c.hub.Register(identifier, displayName, c)
}

// Send queues msg for the write loop. A full outbox drops the message.
func (c *Client) Send(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", "type", msg.Type, "error", err)
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Run blocks until the connection is gone.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		if c.identity != "" {
			c.hub.Disconnect(c.identity, c)
		}
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("read error", "error", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// dispatch routes one client frame. Malformed or unauthorized frames are
// logged and dropped.
func (c *Client) dispatch(raw []byte) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.log.Debug("malformed frame", "error", err)
		return
	}

	switch in.Type {
	case MsgUserConnected:
		var p UserConnectedPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			c.log.Debug("malformed payload", "type", in.Type, "error", err)
			return
		}
		if c.identity != "" && p.Identifier != "" && p.Identifier != c.identity {
			c.log.Info("frame rejected", "type", in.Type, "claimed", p.Identifier, "reason", ErrIdentityMismatch)
			return
		}
		id := c.identity
		if id == "" {
			id = p.Identifier
		}
		if id == "" {
			c.log.Debug("frame rejected", "type", in.Type, "reason", ErrNotConnected)
			return
		}
		name := p.DisplayName
		if name == "" {
			name = c.displayName
		}
		c.Bind(id, name)

	case MsgFindMatch, MsgCancelMatch:
		claimed, err := decodeSeek(in.Payload)
		if err != nil {
			c.log.Debug("malformed payload", "type", in.Type, "error", err)
			return
		}
		id, err := c.resolve(claimed)
		if err != nil {
			c.log.Info("frame rejected", "type", in.Type, "claimed", claimed, "reason", err)
			return
		}
		if in.Type == MsgFindMatch {
			_ = c.hub.SeekMatch(id)
		} else {
			c.hub.CancelSeek(id)
		}

	case MsgMove:
		var p MovePayload
		if err := json.Unmarshal(in.Payload, &p); err != nil || p.Position == nil {
			c.log.Debug("malformed payload", "type", in.Type, "error", err)
			return
		}
		id, err := c.resolve(p.Identifier)
		if err != nil {
			c.log.Info("frame rejected", "type", in.Type, "claimed", p.Identifier, "reason", err)
			return
		}
		_ = c.hub.SubmitMove(p.SessionID, *p.Position, id)

	default:
		c.log.Debug("unknown frame type", "type", in.Type)
	}
}

// resolve checks a claimed identifier against the bound one. An unbound
// connection is bound to the claim.
func (c *Client) resolve(claimed string) (string, error) {
	if c.identity != "" {
		if claimed != "" && claimed != c.identity {
			return "", ErrIdentityMismatch
		}
		return c.identity, nil
	}
	if claimed == "" {
		return "", ErrNotConnected
	}
	c.Bind(claimed, "")
	return claimed, nil
}
