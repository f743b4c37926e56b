package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ronin/internal/models"
)

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID"), "email": c.GetString("email")})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testUser() *models.User {
	return &models.User{Base: models.Base{ID: "0191d5a8-3f2e-7c4a-9b1d-2e8f6a4c0d11"}, Email: "test@example.com"}
}

func TestAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()

	t.Run("accepts_access_token", func(t *testing.T) {
		token, err := GenerateAccessToken(testUser())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec := doAuthRequest(r, "Bearer "+token)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body["user_id"] != testUser().ID {
			t.Errorf("expected user_id %s, got %s", testUser().ID, body["user_id"])
		}
		if body["email"] != "test@example.com" {
			t.Errorf("expected email test@example.com, got %s", body["email"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doAuthRequest(r, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		body := parseBody(t, rec)
		errObj := body["error"].(map[string]interface{})
		if errObj["code"] != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %v", errObj["code"])
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec := doAuthRequest(r, "Token abc")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		rec := doAuthRequest(r, "Bearer not.a.jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects_refresh_token", func(t *testing.T) {
		token, err := GenerateRefreshToken(testUser())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec := doAuthRequest(r, "Bearer "+token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestValidateRefreshToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		token, _ := GenerateRefreshToken(testUser())
		claims, err := ValidateRefreshToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.UserID != testUser().ID {
			t.Errorf("expected %s, got %s", testUser().ID, claims.UserID)
		}
		if claims.Issuer != "ronin-api" {
			t.Errorf("expected issuer ronin-api, got %s", claims.Issuer)
		}
	})

	t.Run("access_token_rejected", func(t *testing.T) {
		token, _ := GenerateAccessToken(testUser())
		if _, err := ValidateRefreshToken(token); err == nil {
			t.Error("expected error for access token")
		}
	})
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
	if h != HashToken("abc") {
		t.Error("expected stable digest")
	}
	if h == HashToken("abd") {
		t.Error("expected different digests for different input")
	}
}

func TestAuthMiddleware_WebsocketQueryToken(t *testing.T) {
	r := setupAuthRouter()
	token, _ := GenerateAccessToken(testUser())

	t.Run("accepted_on_upgrade", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, http.NoBody)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("ignored_without_upgrade", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
