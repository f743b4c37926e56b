package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		budgetID := r.URL.Query().Get("budget")
		if err := h.Subscribe(w, r, budgetID, "user-1"); err != nil {
			t.Logf("subscribe: %v", err)
		}
	}))
}

func dial(t *testing.T, srv *httptest.Server, budgetID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?budget=" + budgetID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForSubscribers(t *testing.T, h *Hub, budgetID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Subscribers(budgetID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers for %s, got %d", want, budgetID, h.Subscribers(budgetID))
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	defer h.Close()
	srv := startServer(t, h)
	defer srv.Close()

	subscribed := dial(t, srv, "budget-a")
	defer subscribed.Close()
	other := dial(t, srv, "budget-b")
	defer other.Close()

	waitForSubscribers(t, h, "budget-a", 1)
	waitForSubscribers(t, h, "budget-b", 1)

	h.Broadcast("budget-a", MessageTypeTotals, map[string]string{"total_spent": "20"})

	_ = subscribed.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, body, err := subscribed.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type     string            `json:"type"`
		BudgetID string            `json:"budget_id"`
		Data     map[string]string `json:"data"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != MessageTypeTotals || msg.BudgetID != "budget-a" || msg.Data["total_spent"] != "20" {
		t.Errorf("unexpected message: %s", body)
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Error("subscriber of another budget must not receive the message")
	}
}

func TestHubSubscribers_Empty(t *testing.T) {
	h := NewHub()
	defer h.Close()

	if n := h.Subscribers("missing"); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
	// Broadcasting without subscribers is a no-op.
	h.Broadcast("missing", MessageTypeTotals, nil)
}
