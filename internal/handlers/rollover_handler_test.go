package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ronin/internal/rollover"
)

type mockRolloverRunner struct {
	processDueFn func(ctx context.Context, now time.Time) (rollover.Result, error)
}

func (m *mockRolloverRunner) ProcessDue(ctx context.Context, now time.Time) (rollover.Result, error) {
	if m.processDueFn != nil {
		return m.processDueFn(ctx, now)
	}
	return rollover.Result{}, nil
}

func setupRolloverRouter(handler *RolloverHandler) *gin.Engine {
	r := gin.New()
	r.POST("/pipeline/rollover", handler.RunRollover)
	return r
}

func TestRolloverHandler_RunRollover(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		runner := &mockRolloverRunner{
			processDueFn: func(_ context.Context, _ time.Time) (rollover.Result, error) {
				return rollover.Result{Due: 2, RolledOver: 2, CreatedIDs: []string{testBudgetID, testLinkedID}}, nil
			},
		}
		r := setupRolloverRouter(NewRolloverHandler(runner))

		rec := doRequest(r, "POST", "/pipeline/rollover", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["rolled_over"].(float64) != 2 {
			t.Errorf("expected 2 rolled over, got %v", result["rolled_over"])
		}
	})

	t.Run("honors as_of", func(t *testing.T) {
		var gotNow time.Time
		runner := &mockRolloverRunner{
			processDueFn: func(_ context.Context, now time.Time) (rollover.Result, error) {
				gotNow = now
				return rollover.Result{}, nil
			},
		}
		r := setupRolloverRouter(NewRolloverHandler(runner))

		rec := doRequest(r, "POST", "/pipeline/rollover", `{"as_of":"2024-03-01T00:00:00Z"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !gotNow.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected 2024-03-01, got %v", gotNow)
		}
	})

	t.Run("returns 500 on failure", func(t *testing.T) {
		runner := &mockRolloverRunner{
			processDueFn: func(_ context.Context, _ time.Time) (rollover.Result, error) {
				return rollover.Result{}, errors.New("connection reset")
			},
		}
		r := setupRolloverRouter(NewRolloverHandler(runner))

		rec := doRequest(r, "POST", "/pipeline/rollover", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
