package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"tictac_arena/internal/service"
	"tictac_arena/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type player struct {
	name string
	conn *websocket.Conn
	in   chan frame
	errs chan error
}

func dialPlayer(ctx context.Context, addr, token, name string) (*player, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}

	p := &player{name: name, conn: conn, in: make(chan frame, 16), errs: make(chan error, 1)}
	// one reader per connection
	go func() {
		defer close(p.in)
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				p.errs <- err
				return
			}
			p.in <- f
		}
	}()
	return p, nil
}

func (p *player) send(typ string, payload any) error {
	return p.conn.WriteJSON(map[string]any{"type": typ, "payload": payload})
}

func (p *player) await(ctx context.Context, typ string, out any) error {
	for {
		select {
		case f, ok := <-p.in:
			if !ok {
				return fmt.Errorf("%s: connection closed waiting for %s: %w", p.name, typ, <-p.errs)
			}
			if f.Type != typ {
				continue
			}
			if out == nil {
				return nil
			}
			return json.Unmarshal(f.Payload, out)
		case <-ctx.Done():
			return fmt.Errorf("%s: waiting for %s: %w", p.name, typ, ctx.Err())
		}
	}
}

// smoke connects two players, pairs them and plays X to a top row win.
func smoke(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()
	out := cmd.Root().Writer

	var tokA, tokB string
	if secret := cmd.String("secret"); secret != "" {
		jwts, err := service.NewJWTService(secret, time.Hour)
		if err != nil {
			return err
		}
		if tokA, err = jwts.GenerateJWT(1, "smokeA"); err != nil {
			return err
		}
		if tokB, err = jwts.GenerateJWT(2, "smokeB"); err != nil {
			return err
		}
	}

	a, err := dialPlayer(ctx, cmd.String("addr"), tokA, "A")
	if err != nil {
		return err
	}
	defer a.conn.Close()
	b, err := dialPlayer(ctx, cmd.String("addr"), tokB, "B")
	if err != nil {
		return err
	}
	defer b.conn.Close()

	if tokA == "" {
		if err := errors.Join(
			a.send(ws.MsgUserConnected, ws.UserConnectedPayload{Identifier: "smoke-a", DisplayName: "Smoke A"}),
			b.send(ws.MsgUserConnected, ws.UserConnectedPayload{Identifier: "smoke-b", DisplayName: "Smoke B"}),
		); err != nil {
			return err
		}
	}

	if err := a.send(ws.MsgFindMatch, nil); err != nil {
		return err
	}
	if err := a.await(ctx, ws.MsgWaiting, nil); err != nil {
		return err
	}
	if err := b.send(ws.MsgFindMatch, nil); err != nil {
		return err
	}

	var match ws.MatchFoundPayload
	if err := a.await(ctx, ws.MsgMatchFound, &match); err != nil {
		return err
	}
	if err := b.await(ctx, ws.MsgMatchFound, nil); err != nil {
		return err
	}
	if !match.Start {
		return fmt.Errorf("A waited longest but does not start")
	}
	fmt.Fprintf(out, "matched session=%s A=%s B=%s\n", match.SessionID, match.Symbol, match.Symbol.Other())

	moves := []struct {
		mover, other *player
		pos          int
	}{{a, b, 0}, {b, a, 3}, {a, b, 1}, {b, a, 4}, {a, b, 2}}
	for _, mv := range moves {
		pos := mv.pos
		if err := mv.mover.send(ws.MsgMove, ws.MovePayload{SessionID: match.SessionID, Position: &pos}); err != nil {
			return err
		}
		var om ws.OpponentMovePayload
		if err := mv.other.await(ctx, ws.MsgOpponentMove, &om); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s played %d\n", mv.mover.name, om.Position)
	}

	var over ws.GameOverPayload
	if err := b.await(ctx, ws.MsgGameOver, &over); err != nil {
		return err
	}
	if over.Winner != match.Symbol {
		return fmt.Errorf("expected %s to win, got winner=%q draw=%t", match.Symbol, over.Winner, over.Draw)
	}
	fmt.Fprintf(out, "game over: %s wins on %v\n", over.Winner, over.Line)
	return nil
}
