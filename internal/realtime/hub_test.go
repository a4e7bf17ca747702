package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "kitchen")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(EventOrderStatus, map[string]interface{}{"order_id": 5, "status": "preparing"})

	var msg map[string]interface{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventOrderStatus, msg["event"])
	assert.Equal(t, "preparing", msg["data"].(map[string]interface{})["status"])

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeRejectsPlainHTTP(t *testing.T) {
	hub := NewHub()
	w := httptest.NewRecorder()
	err := hub.Serve(w, httptest.NewRequest(http.MethodGet, "/kitchen/ws", nil), "kitchen")
	assert.Error(t, err)
	assert.Zero(t, hub.Clients())
}

func TestBroadcastDropsClientThatFallsBehind(t *testing.T) {
	hub := NewHub()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	stalled, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer stalled.Close()

	// no writer drains this client's queue
	hub.add(<-conns, "kitchen")
	require.Equal(t, 1, hub.Clients())

	start := time.Now()
	for i := 0; i < sendBuffer; i++ {
		hub.Broadcast(EventOrderCreated, map[string]interface{}{"order_id": i})
	}
	assert.Equal(t, 1, hub.Clients())

	hub.Broadcast(EventOrderCreated, map[string]interface{}{"order_id": sendBuffer})
	assert.Zero(t, hub.Clients())
	assert.Less(t, time.Since(start), writeWait)

	// dropping twice is harmless
	hub.Broadcast(EventOrderCreated, nil)
	assert.Zero(t, hub.Clients())
}

func TestBroadcastReachesClientsPastADroppedOne(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "kitchen")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	first.Close()
	hub.Broadcast(EventOrderStatus, map[string]interface{}{"order_id": 1, "status": "ready"})

	var msg Message
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, second.ReadJSON(&msg))
	assert.Equal(t, EventOrderStatus, msg.Event)
	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
}
