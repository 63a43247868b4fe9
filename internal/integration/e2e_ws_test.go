package integration

import (
	"net/http"
	"testing"
	"time"

	"tictac_arena/internal/domain"
	"tictac_arena/internal/game"
	"tictac_arena/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_WS_AuthRequired(t *testing.T) {
	srv := startServer(t, map[string]string{}, nil, &recorder{})

	_, res, err := websocket.DefaultDialer.Dial(srv.wsURL(""), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	_, res, err = websocket.DefaultDialer.Dial(srv.wsURL("not-a-token"), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestE2E_WS_Match(t *testing.T) {
	sink := &recorder{}
	srv := startServer(t, map[string]string{}, nil, sink)

	a := dial(t, srv.wsURL(srv.token(t, 1, "alice")))
	b := dial(t, srv.wsURL(srv.token(t, 2, "bob")))

	a.send(t, ws.MsgFindMatch, nil)
	a.expect(t, ws.MsgWaiting, nil)
	b.send(t, ws.MsgFindMatch, nil)

	var am, bm ws.MatchFoundPayload
	a.expect(t, ws.MsgMatchFound, &am)
	b.expect(t, ws.MsgMatchFound, &bm)
	require.Equal(t, am.SessionID, bm.SessionID)
	assert.True(t, am.Start)
	assert.False(t, bm.Start)
	assert.Equal(t, game.X, am.Symbol)
	assert.Equal(t, ws.PlayerInfo{Identifier: "2", DisplayName: "bob"}, am.Opponent)
	sid := am.SessionID

	play := func(mover, other *client, pos int) {
		t.Helper()
		mover.send(t, ws.MsgMove, map[string]any{"sessionId": sid, "position": pos})
		var om ws.OpponentMovePayload
		other.expect(t, ws.MsgOpponentMove, &om)
		assert.Equal(t, pos, om.Position)
		var tc ws.TurnChangePayload
		other.expect(t, ws.MsgTurnChange, &tc)
		assert.True(t, tc.IsYourTurn)
		mover.expect(t, ws.MsgTurnChange, &tc)
		assert.False(t, tc.IsYourTurn)
	}

	play(a, b, 0)
	// B claims to be someone else: dropped without a reply
	b.send(t, ws.MsgMove, map[string]any{"sessionId": sid, "position": 4, "identifier": "1"})
	play(b, a, 3)
	play(a, b, 1)
	play(b, a, 4)
	play(a, b, 2)

	for _, c := range []*client{a, b} {
		var over ws.GameOverPayload
		c.expect(t, ws.MsgGameOver, &over)
		assert.Equal(t, game.X, over.Winner)
		assert.Equal(t, []int{0, 1, 2}, over.Line)
	}

	require.Eventually(t, func() bool { return len(sink.list()) == 1 }, time.Second, 10*time.Millisecond)
	o := sink.list()[0]
	assert.Equal(t, domain.ReasonLine, o.Reason)
	res, _ := o.ResultFor("1")
	assert.Equal(t, domain.MatchResultWin, res)
}

func TestE2E_WS_AnonymousAndDisconnect(t *testing.T) {
	sink := &recorder{}
	srv := startServer(t, map[string]string{"WS_AUTH_REQUIRED": "false"}, nil, sink)

	a := dial(t, srv.wsURL(""))
	b := dial(t, srv.wsURL(""))

	a.send(t, ws.MsgUserConnected, map[string]any{"identifier": "guest-a", "displayName": "Ann"})
	a.send(t, ws.MsgFindMatch, "guest-a")
	a.expect(t, ws.MsgWaiting, nil)

	b.send(t, ws.MsgFindMatch, map[string]any{"identifier": "guest-b"})
	var bm ws.MatchFoundPayload
	b.expect(t, ws.MsgMatchFound, &bm)
	assert.Equal(t, "Ann", bm.Opponent.DisplayName)
	a.expect(t, ws.MsgMatchFound, nil)

	require.NoError(t, a.conn.Close())
	var od ws.OpponentDisconnectedPayload
	b.expect(t, ws.MsgOpponentDisconnected, &od)
	assert.Equal(t, bm.SessionID, od.SessionID)

	require.Eventually(t, func() bool { return len(sink.list()) == 1 }, time.Second, 10*time.Millisecond)
	o := sink.list()[0]
	assert.Equal(t, domain.ReasonForfeit, o.Reason)
	res, _ := o.ResultFor("guest-b")
	assert.Equal(t, domain.MatchResultWin, res)

	b.send(t, ws.MsgFindMatch, nil)
	b.expect(t, ws.MsgWaiting, nil)
	assert.Equal(t, ws.LobbyStats{Waiting: 1, Sessions: 0, Connected: 1}, srv.hub.Stats())
}

func TestE2E_Lobby(t *testing.T) {
	srv := startServer(t, map[string]string{}, nil, &recorder{})

	res, err := http.Get(srv.ts.URL + "/api/v1/lobby")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res2, err := http.Get(srv.ts.URL + "/api/v1/leaderboard")
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res2.StatusCode)
}
