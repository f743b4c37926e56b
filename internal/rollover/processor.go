// Package rollover starts the next period of recurring budgets once the
// current one has ended.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ronin/internal/events"
	"ronin/internal/logger"
	"ronin/internal/models"
	"ronin/internal/period"
)

// errAlreadyRolledOver aborts a rollover whose budget was claimed by
// another run between the due query and the write.
var errAlreadyRolledOver = errors.New("budget already rolled over")

// Result summarizes one ProcessDue run.
type Result struct {
	Due        int      `json:"due"`
	RolledOver int      `json:"rolled_over"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	CreatedIDs []string `json:"created_ids"`
}

// Processor rolls over due budgets with bounded parallelism.
type Processor struct {
	db          *gorm.DB
	publisher   events.Publisher
	concurrency int
	log         *zap.SugaredLogger
}

// NewProcessor creates a Processor. A concurrency below 1 is treated as 1.
func NewProcessor(db *gorm.DB, publisher events.Publisher, concurrency int) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Processor{
		db:          db,
		publisher:   publisher,
		concurrency: concurrency,
		log:         logger.Named("rollover"),
	}
}

// Due returns active recurring budgets whose last day is before now's date
// and that have not been rolled over yet.
func (p *Processor) Due(ctx context.Context, now time.Time) ([]models.Budget, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var budgets []models.Budget
	err := p.db.WithContext(ctx).
		Where("status = ? AND is_recurring = ? AND period <> ?", models.BudgetStatusActive, true, models.PeriodOneTime).
		Where("rolled_over_to_id IS NULL AND end_at IS NOT NULL AND end_at < ?", today).
		Order("end_at ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("query due budgets: %w", err)
	}
	return budgets, nil
}

// ProcessDue rolls over every due budget. A budget that fails is logged
// and counted, it does not stop the others. The returned error is only
// set when the due budgets cannot be listed or ctx is cancelled.
func (p *Processor) ProcessDue(ctx context.Context, now time.Time) (Result, error) {
	due, err := p.Due(ctx, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{Due: len(due), CreatedIDs: []string{}}
	if len(due) == 0 {
		return result, nil
	}

	p.log.Infow("processing due budgets", "count", len(due), "concurrency", p.concurrency)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range due {
		budget := due[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			next, err := p.Rollover(gctx, &budget)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, errAlreadyRolledOver):
				result.Skipped++
			case err != nil:
				result.Failed++
				p.log.Errorw("rollover failed", "budget_id", budget.ID, "error", err)
			default:
				result.RolledOver++
				result.CreatedIDs = append(result.CreatedIDs, next.ID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	p.log.Infow("rollover complete",
		"due", result.Due,
		"rolled_over", result.RolledOver,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// Rollover creates the budget for the period after budget, copying its
// allocations and planned incomes, and marks budget completed. It runs in
// one database transaction.
func (p *Processor) Rollover(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	if budget.RolledOverToID != nil {
		return nil, errAlreadyRolledOver
	}

	nextRange := period.Next(budget.StartAt, budget.Period)
	next := &models.Budget{
		UserID:      budget.UserID,
		Name:        budget.Name,
		Strategy:    budget.Strategy,
		Period:      budget.Period,
		StartAt:     nextRange.Start,
		EndAt:       &nextRange.End,
		IsRecurring: true,
		Status:      models.BudgetStatusActive,
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Incomes", "Categories").Create(next).Error; err != nil {
			return fmt.Errorf("create next budget: %w", err)
		}

		var categories []models.BudgetCategory
		if err := tx.Where("budget_id = ?", budget.ID).Order("created_at ASC, id ASC").Find(&categories).Error; err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for _, bc := range categories {
			copied := models.BudgetCategory{
				BudgetID:          next.ID,
				CategoryID:        bc.CategoryID,
				Name:              bc.Name,
				Group:             bc.Group,
				AllocatedAmount:   bc.AllocatedAmount,
				AllocationPercent: bc.AllocationPercent,
			}
			if err := tx.Create(&copied).Error; err != nil {
				return fmt.Errorf("copy category %s: %w", bc.ID, err)
			}
		}

		var incomes []models.Income
		if err := tx.Where("budget_id = ?", budget.ID).Order("created_at ASC, id ASC").Find(&incomes).Error; err != nil {
			return fmt.Errorf("load incomes: %w", err)
		}
		for _, inc := range incomes {
			copied := models.Income{
				BudgetID:  next.ID,
				Amount:    inc.Amount,
				Source:    inc.Source,
				Frequency: inc.Frequency,
				IsPlanned: true,
			}
			if err := tx.Create(&copied).Error; err != nil {
				return fmt.Errorf("copy income %s: %w", inc.ID, err)
			}
		}

		res := tx.Model(&models.Budget{}).
			Where("id = ? AND rolled_over_to_id IS NULL", budget.ID).
			Updates(map[string]interface{}{
				"status":            models.BudgetStatusCompleted,
				"rolled_over_to_id": next.ID,
			})
		if res.Error != nil {
			return fmt.Errorf("complete budget: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadyRolledOver
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	nextID := next.ID
	budget.Status = models.BudgetStatusCompleted
	budget.RolledOverToID = &nextID

	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.publisher.Publish(pubCtx, events.New(events.TypeBudgetRolledOver, budget.UserID, budget.ID, next.ID)); err != nil {
		p.log.Warnw("failed to publish rollover event", "budget_id", budget.ID, "error", err)
	}

	p.log.Infow("budget rolled over",
		"budget_id", budget.ID,
		"next_budget_id", next.ID,
		"start_at", next.StartAt.Format("2006-01-02"),
	)
	return next, nil
}
