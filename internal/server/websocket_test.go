package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/config"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config.WebSocketConfig{WriteTimeout: time.Second}, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, player string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?player=" + player
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPromptRoundTrip(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts, "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := s.AwaitSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Player())

	// Client side: answer the first prompt that arrives.
	go func() {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		_ = conn.WriteJSON(Message{Type: "answer", PromptID: msg.PromptID, Text: "keep"})
	}()

	answer, err := session.Prompt(ctx, "keep or mulligan?")
	require.NoError(t, err)
	assert.Equal(t, "keep", answer)
}

func TestPromptFailsOnDisconnect(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := s.AwaitSession(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, conn.Close())

	_, err = session.Prompt(ctx, "still there?")
	assert.Error(t, err)
}

func TestPromptIgnoresStrayAnswers(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts, "carol")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := s.AwaitSession(ctx, "carol")
	require.NoError(t, err)

	go func() {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		// A stale answer first, then the real one.
		_ = conn.WriteJSON(Message{Type: "answer", PromptID: "stale", Text: "mull"})
		_ = conn.WriteJSON(Message{Type: "answer", PromptID: msg.PromptID, Text: "play"})
	}()

	answer, err := session.Prompt(ctx, "play or draw?")
	require.NoError(t, err)
	assert.Equal(t, "play", answer)
}

func TestAwaitSessionTimesOut(t *testing.T) {
	s, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.AwaitSession(ctx, "nobody")
	assert.Error(t, err)
}

func TestRejectsMissingPlayer(t *testing.T) {
	_, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	s, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conns := []*websocket.Conn{dial(t, ts, "alice"), dial(t, ts, "bob")}
	for _, name := range []string{"alice", "bob"} {
		_, err := s.AwaitSession(ctx, name)
		require.NoError(t, err)
	}

	s.Broadcast(Message{Type: "event", Text: "MATCH_ENDED"})

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "event", msg.Type)
		assert.Equal(t, "MATCH_ENDED", msg.Text)
	}
}
