package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmorel/altered-companion/internal/auth"
	"github.com/nmorel/altered-companion/internal/companion"
	"github.com/nmorel/altered-companion/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "companion.db"))
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	service := companion.NewService(db, companion.Options{
		Tokens: auth.StaticToken("test"),
	})

	return NewServer(DefaultConfig(), service)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestGetCollection_EmptyDatabase(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data struct {
			Cards     map[string]interface{} `json:"cards"`
			UpdatedAt *string                `json:"updatedAt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data.Cards) != 0 {
		t.Errorf("cards = %v, want empty", body.Data.Cards)
	}
	if body.Data.UpdatedAt != nil {
		t.Error("updatedAt should be omitted before the first refresh")
	}
}

func TestStartTrade_RejectsBadRequests(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing friend", `{"cards":[{"reference":"R","quantity":1}]}`, http.StatusBadRequest},
		{"no cards", `{"friendId":"friend-1","cards":[]}`, http.StatusBadRequest},
		{"zero quantity", `{"friendId":"friend-1","cards":[{"reference":"R","quantity":0}]}`, http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/trades", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestContentTypeEnforcement(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trades", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestUpdateTradelist_ValidatesQuantity(t *testing.T) {
	server := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut, "/api/v1/cards/ALT_CORE_B_AX_01_C/tradelist?quantity=-1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
