package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"retail-crm/internal/auth"
	"retail-crm/internal/config"
	"retail-crm/internal/httpapi"

	"github.com/gin-gonic/gin"
)

func newAuthedRouter(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{Enabled: true, JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}
	r := gin.New()
	registerRoutes(r, httpapi.Handlers{}, auth.RequireAccessToken(m))
	return r, m
}

func TestRoutes_ProtectedWithoutToken(t *testing.T) {
	r, _ := newAuthedRouter(t)

	for _, path := range []string{"/api/prospects", "/api/dashboard", "/api/calls", "/api/orders"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestRoutes_WebhookIsPublic(t *testing.T) {
	r, _ := newAuthedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/webhooks/bland", strings.NewReader("{")))
	if w.Code != http.StatusOK {
		t.Fatalf("expected webhook ack without a token, got %d", w.Code)
	}
}

func TestRoutes_CampaignLaunchNeedsManager(t *testing.T) {
	r, m := newAuthedRouter(t)

	token, err := m.Issue(time.Now(), "member-1", "rep", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/c1/launch", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a rep, got %d", w.Code)
	}
}
