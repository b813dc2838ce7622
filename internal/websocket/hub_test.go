package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startHub runs a hub and a server that attaches every connection to the session
// named by the "sid" query parameter.
func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	upgrader := NewUpgrader([]string{"*"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, &Conn{Conn: conn}, r.URL.Query().Get("sid"))
		hub.Register(client)
		go client.WritePump()
		client.ReadPump()
	}))

	t.Cleanup(func() {
		cancel()
		<-stopped
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url, sessionID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?sid="+sessionID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func cartState(version uint64) model.CartState {
	return model.NewCartState([]model.LineItem{{
		Key:      "p1",
		Product:  model.ProductRef{ID: "p1", Title: "Amaro", Price: model.PriceOf(10)},
		Quantity: 2,
	}}, version)
}

func readEvent(t *testing.T, conn *websocket.Conn) CartEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event CartEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHub_PublishReachesEveryTabOfSession(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, url, "sess-a")
	second := dial(t, url, "sess-a")
	other := dial(t, url, "sess-b")

	require.Eventually(t, func() bool {
		return hub.Connections("sess-a") == 2 && hub.Connections("sess-b") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish("sess-a", cartState(1))

	for _, conn := range []*websocket.Conn{first, second} {
		event := readEvent(t, conn)
		assert.Equal(t, EventCartUpdated, event.Type)
		assert.Equal(t, 20.0, event.Cart.Total)
		assert.Equal(t, uint64(1), event.Cart.Version)
	}

	// the other session receives nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_EventsArriveInOrder(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, "sess-a")
	require.Eventually(t, func() bool { return hub.Connections("sess-a") == 1 }, time.Second, 10*time.Millisecond)

	for v := uint64(1); v <= 5; v++ {
		hub.Publish("sess-a", cartState(v))
	}
	for v := uint64(1); v <= 5; v++ {
		assert.Equal(t, v, readEvent(t, conn).Cart.Version)
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, "sess-a")
	require.Eventually(t, func() bool { return hub.Connections("sess-a") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections("sess-a") == 0 }, time.Second, 10*time.Millisecond)

	// publishing to a session without connections is a no-op
	hub.Publish("sess-a", cartState(2))
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(hub, nil, "sess-a")
	hub.Register(client)
	cancel()
	<-stopped

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Connections("sess-a"))

	// registering after shutdown does not block
	late := NewClient(hub, nil, "sess-b")
	hub.Register(late)
	_, open = <-late.Send
	assert.False(t, open)
	hub.Unregister(late)
}
