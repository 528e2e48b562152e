package websocket_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadenza/types"
	"cadenza/websocket"
)

// newSubscriberServer serves WebSocket connections subscribed to sessionID
func newSubscriberServer(t *testing.T, hub websocket.Hub, sessionID string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.GetUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := websocket.NewClient(hub, conn, sessionID)
		hub.RegisterClient(client)
		client.StartPumps()
	}))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server) *gws.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Give the hub time to process the registration
	time.Sleep(100 * time.Millisecond)

	return conn
}

// TestHubBroadcastToSession tests that session subscribers receive playback events
func TestHubBroadcastToSession(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	conn := dial(t, newSubscriberServer(t, hub, "session-1"))

	hub.BroadcastPlayback("session-1", "track", "/a/1.mp3", 0, "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg types.PlaybackMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "session-1", msg.SessionID)
	assert.Equal(t, "track", msg.Type)
	assert.Equal(t, "/a/1.mp3", msg.TrackPath)
	assert.Equal(t, 0, msg.Ordinal)
	assert.False(t, msg.Timestamp.IsZero())
}

// TestHubBroadcastToAll tests that "all" subscribers see every session's events
func TestHubBroadcastToAll(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	conn := dial(t, newSubscriberServer(t, hub, "all"))

	hub.BroadcastPlayback("some-other-session", "stopped", "", 3, "no file at the requested position")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg types.PlaybackMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "some-other-session", msg.SessionID)
	assert.Equal(t, "stopped", msg.Type)
	assert.Equal(t, 3, msg.Ordinal)
	assert.NotEmpty(t, msg.Message)
}
