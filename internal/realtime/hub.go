// Package realtime pushes budget updates to connected websocket clients.
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"go.uber.org/zap"

	"ronin/internal/logger"
)

const (
	budgetKey = "budget_id"
	userKey   = "user_id"

	// MessageTypeTotals is sent after every ledger write on a budget.
	MessageTypeTotals = "budget.totals"
)

// Message is the envelope written to subscribers.
type Message struct {
	Type     string      `json:"type"`
	BudgetID string      `json:"budget_id"`
	Data     interface{} `json:"data,omitempty"`
}

// Hub tracks websocket sessions per budget.
type Hub struct {
	m   *melody.Melody
	log *zap.SugaredLogger
}

// NewHub creates a hub with keep-alive settings suited to proxies that drop
// idle connections.
func NewHub() *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &Hub{m: m, log: logger.Named("realtime")}

	m.HandleConnect(func(s *melody.Session) {
		budgetID, _ := s.Get(budgetKey)
		userID, _ := s.Get(userKey)
		h.log.Debugw("client connected", "budget_id", budgetID, "user_id", userID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		budgetID, _ := s.Get(budgetKey)
		h.log.Debugw("client disconnected", "budget_id", budgetID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		h.log.Warnw("websocket error", "error", err)
	})

	return h
}

// Subscribe upgrades the request and attaches the session to budgetID.
// Callers must have checked that userID owns the budget.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, budgetID, userID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{
		budgetKey: budgetID,
		userKey:   userID,
	})
}

// Broadcast sends a message to every session subscribed to budgetID.
// Failures are logged.
func (h *Hub) Broadcast(budgetID, messageType string, data interface{}) {
	body, err := json.Marshal(Message{Type: messageType, BudgetID: budgetID, Data: data})
	if err != nil {
		h.log.Errorw("failed to encode realtime message", "budget_id", budgetID, "error", err)
		return
	}

	err = h.m.BroadcastFilter(body, func(s *melody.Session) bool {
		id, ok := s.Get(budgetKey)
		return ok && id == budgetID
	})
	if err != nil {
		h.log.Warnw("failed to broadcast", "budget_id", budgetID, "error", err)
	}
}

// Subscribers returns the number of open sessions for budgetID.
func (h *Hub) Subscribers(budgetID string) int {
	sessions, err := h.m.Sessions()
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range sessions {
		if id, ok := s.Get(budgetKey); ok && id == budgetID {
			n++
		}
	}
	return n
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}
