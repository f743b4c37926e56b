package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ronin/internal/events"
)

func TestPipelineFlow_Rollover(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "rollover@test.com", "password123")

	budgetID := app.create(t, "/api/v1/budgets", `{
		"name":"January","strategy":"ZERO_SUM","period":"MONTHLY","start_at":"2024-01-01T00:00:00Z","is_recurring":true,
		"categories":[{"name":"Rent","group":"NEEDS","allocated_amount":"1200"}],
		"incomes":[{"source":"Salary","amount":"3000","frequency":"MONTHLY","is_planned":true}]
	}`, token, "budget")

	t.Run("missing_api_key", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/pipeline/rollover", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("user_token_is_not_an_api_key", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/pipeline/rollover", "", token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	rec := app.pipelineRequest(http.MethodPost, "/api/v1/pipeline/rollover", `{"as_of":"2024-02-01T00:00:00Z"}`)
	expectStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	if result["rolled_over"].(float64) != 1 {
		t.Fatalf("expected 1 rolled over, got %v", result["rolled_over"])
	}
	nextID := result["created_ids"].([]interface{})[0].(string)

	rec = app.request(http.MethodGet, "/api/v1/budgets/"+budgetID, "", token)
	expectStatus(t, rec, http.StatusOK)
	old := parseJSON(t, rec)["budget"].(map[string]interface{})
	if old["status"] != "completed" {
		t.Errorf("expected old budget completed, got %v", old["status"])
	}
	if old["rolled_over_to_id"] != nextID {
		t.Errorf("expected rolled_over_to_id %s, got %v", nextID, old["rolled_over_to_id"])
	}

	rec = app.request(http.MethodGet, "/api/v1/budgets/"+nextID, "", token)
	expectStatus(t, rec, http.StatusOK)
	next := parseJSON(t, rec)["budget"].(map[string]interface{})
	if next["start_at"] != "2024-02-01T00:00:00Z" {
		t.Errorf("expected next period to start 2024-02-01, got %v", next["start_at"])
	}
	if cats := next["categories"].([]interface{}); len(cats) != 1 {
		t.Errorf("expected categories carried over, got %d", len(cats))
	}

	// A second run on the same day finds nothing to do.
	rec = app.pipelineRequest(http.MethodPost, "/api/v1/pipeline/rollover", `{"as_of":"2024-02-01T00:00:00Z"}`)
	expectStatus(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["rolled_over"].(float64); got != 0 {
		t.Errorf("expected idempotent rerun, got %.0f rolled over", got)
	}

	var rolled int
	for _, e := range app.Publisher.Events() {
		if e.Type == events.TypeBudgetRolledOver {
			rolled++
		}
	}
	if rolled != 1 {
		t.Errorf("expected 1 rolled over event, got %d", rolled)
	}
}

func TestAuthFlow_RegisterRefreshProfile(t *testing.T) {
	app := setupApp(t)
	_, refresh, userID := app.registerUser(t, "auth@test.com", "password123")

	rec := app.request(http.MethodPost, "/api/v1/auth/register",
		`{"email":"auth@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec = app.request(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`, "")
	expectStatus(t, rec, http.StatusOK)
	rotated := parseJSON(t, rec)

	rec = app.request(http.MethodGet, "/api/v1/profile", "", rotated["access_token"].(string))
	expectStatus(t, rec, http.StatusOK)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["id"] != userID {
		t.Errorf("expected profile for %s, got %v", userID, user["id"])
	}

	rec = app.request(http.MethodGet, "/api/v1/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestRouter_HealthAndRealtimeDisabled(t *testing.T) {
	app := setupApp(t)

	rec := app.request(http.MethodGet, "/api/health", "", "")
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["status"] != "ok" {
		t.Error("expected status ok")
	}

	token, _, _ := app.registerUser(t, "ws@test.com", "password123")
	budgetID := app.create(t, "/api/v1/budgets",
		`{"name":"Live","strategy":"ZERO_SUM","period":"MONTHLY","start_at":"2024-05-01T00:00:00Z"}`, token, "budget")

	rec = app.request(http.MethodGet, "/api/v1/budgets/"+budgetID+"/ws", "", token)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a hub, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/budgets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
}
