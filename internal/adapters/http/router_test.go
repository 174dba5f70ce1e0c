package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/adapters/identity"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "test",
		Port:       8080,
		StaticPath: t.TempDir() + "/missing",
		ReadLimit:  4096,
		PingPeriod: time.Minute,
		SendBuffer: 8,
		Secret:     "test-secret",
		RateLimit:  config.RateLimitConfig{Messages: 10, Interval: time.Second},
	}
	o := orch.New(app.NewRegistry(), app.NewRouter(), app.SimplePolicy{})
	ids := identity.NewService(cfg.Secret, time.Hour)
	ids.Cost = bcrypt.MinCost
	return SetupRouter(context.Background(), cfg, o, ids), o
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Register_Login_Users(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/register", gin.H{"name": "Alice", "email": "alice@example.com", "password": "password123"})
	req.Equal(http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/register", gin.H{"name": "Alice", "email": "alice@example.com", "password": "password123"})
	req.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{"email": "alice@example.com", "password": "nope-nope"})
	req.Equal(http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{"email": "alice@example.com", "password": "password123"})
	req.Equal(http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &login))
	req.NotEmpty(login.Token)

	w = doJSON(r, http.MethodGet, "/api/users", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"users":["Alice"]}`, w.Body.String())
}

func TestRouter_Register_Missing_Fields(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/register", gin.H{"email": "alice@example.com"})
	req.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", nil)
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestRouter_Presence_And_Health(t *testing.T) {
	req := require.New(t)
	r, o := newTestRouter(t)
	o.Registry.Add("c1", "Alice")

	w := doJSON(r, http.MethodGet, "/api/presence", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"users":{"c1":"Alice"}}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/healthz", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"status":"ok","connections":0,"online":1}`, w.Body.String())
}

func TestRouter_Sets_Session_Cookie(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/healthz", nil)
	req.NotEmpty(w.Result().Cookies())
}
