package services

import (
	"context"
	"time"

	"ronin/internal/events"
	"ronin/internal/logger"
	"ronin/internal/realtime"
)

const publishTimeout = 5 * time.Second

// Broadcaster pushes a message to clients watching a budget.
type Broadcaster interface {
	Broadcast(budgetID, messageType string, data interface{})
	Subscribers(budgetID string) int
}

// Notifier announces committed ledger writes. It never fails the caller.
type Notifier interface {
	LedgerChanged(userID, budgetID, eventType string, resourceIDs ...string)
}

type notifier struct {
	publisher events.Publisher
	hub       Broadcaster
	budgets   BudgetServicer
}

// NewNotifier publishes an event for each ledger write and pushes fresh
// budget totals to realtime subscribers. hub may be nil. Totals are only
// computed while the budget has at least one subscriber.
func NewNotifier(publisher events.Publisher, hub Broadcaster, budgets BudgetServicer) Notifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &notifier{publisher: publisher, hub: hub, budgets: budgets}
}

func (n *notifier) LedgerChanged(userID, budgetID, eventType string, resourceIDs ...string) {
	log := logger.Named("notifier")

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, events.New(eventType, userID, budgetID, resourceIDs...)); err != nil {
		log.Warnw("failed to publish ledger event", "type", eventType, "budget_id", budgetID, "error", err)
	}

	if n.hub == nil || n.hub.Subscribers(budgetID) == 0 {
		return
	}
	totals, err := n.budgets.GetBudgetTotals(userID, budgetID)
	if err != nil {
		log.Warnw("failed to compute totals for push", "budget_id", budgetID, "error", err)
		return
	}
	n.hub.Broadcast(budgetID, realtime.MessageTypeTotals, totals)
}
