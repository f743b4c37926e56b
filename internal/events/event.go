// Package events publishes ledger change notifications to a message broker.
//
// Publishing is best-effort: callers log failures and carry on, the ledger
// write has already been committed.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event types.
const (
	TypeTransactionCreated = "transaction.created"
	TypeTransactionUpdated = "transaction.updated"
	TypeTransactionDeleted = "transaction.deleted"
	TypeCardPaymentCreated = "card_payment.created"
	TypeCardPaymentDeleted = "card_payment.deleted"
	TypeBudgetRolledOver   = "budget.rolled_over"
	TypeAllocationChanged  = "budget.allocation_changed"
)

// Event describes one committed ledger change.
type Event struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	BudgetID    string    `json:"budget_id"`
	ResourceIDs []string  `json:"resource_ids,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// New creates an event stamped with the current time.
func New(eventType, userID, budgetID string, resourceIDs ...string) Event {
	return Event{
		Type:        eventType,
		UserID:      userID,
		BudgetID:    budgetID,
		ResourceIDs: resourceIDs,
		OccurredAt:  time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MemoryPublisher keeps events in memory, for tests and local inspection.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *MemoryPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
