package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"harvesthub/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishesToOrderParties(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()

	buyer := dial(t, srv, "buyer")
	farmer := dial(t, srv, "farmer-1")
	stranger := dial(t, srv, "stranger")
	require.Eventually(t, func() bool {
		return hub.Connections("buyer") == 1 && hub.Connections("farmer-1") == 1 && hub.Connections("stranger") == 1
	}, time.Second, 10*time.Millisecond)

	evt := domain.OrderEvent{
		Type:       domain.EventOrderStatusChanged,
		OrderID:    "o1",
		CustomerID: "buyer",
		SellerID:   "farmer-1",
		Status:     domain.StatusShipped,
	}
	require.NoError(t, hub.Publish(context.Background(), evt.Type, evt))

	for _, conn := range []*websocket.Conn{buyer, farmer} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var got domain.OrderEvent
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, "o1", got.OrderID)
		assert.Equal(t, domain.StatusShipped, got.Status)
	}

	require.NoError(t, stranger.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := stranger.ReadMessage()
	assert.Error(t, err)
}

func TestHub_IgnoresOtherPayloads(t *testing.T) {
	hub := NewHub(nil)
	assert.NoError(t, hub.Publish(context.Background(), "something", map[string]string{"a": "b"}))
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()

	conn := dial(t, srv, "buyer")
	require.Eventually(t, func() bool { return hub.Connections("buyer") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections("buyer") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:5173"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "buyer")
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
