package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/config"
	"github.com/oksasatya/estate-marketplace/internal/container"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/pkg/validation"
)

const adminEmail = "admin@estate.test"

func newServer(t *testing.T, tweak func(*config.Config)) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	cfg := config.Load()
	cfg.AdminEmail = adminEmail
	cfg.PasswordKDFIterations = 1000
	cfg.AuthRateLimit = 100
	cfg.MaintenanceMode = false
	if tweak != nil {
		tweak(cfg)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	container.SetConfig(cfg)
	container.SetLogger(log)
	container.SetRedis(rdb)
	container.SetPGPool(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	container.SetBrochures(nil)
	container.SetAssertions(nil)
	container.SetRepositories(container.Repositories{
		Users:    memory.NewUserRepository(),
		Listings: memory.NewListingRepository(),
		Audit:    memory.NewAuditRepository(),
	})

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()
	return r, mr
}

type session struct {
	DeviceID string
	Token    string
}

func call(r *gin.Engine, method, path string, body any, s *session) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if s != nil {
		req.Header.Set(middleware.DeviceHeader, s.DeviceID)
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, email string) *session {
	t.Helper()
	w := call(r, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": "correct-horse"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env struct {
		Data struct {
			Session struct {
				SessionToken string `json:"session_token"`
				DeviceID     string `json:"device_id"`
			} `json:"session"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return &session{DeviceID: env.Data.Session.DeviceID, Token: env.Data.Session.SessionToken}
}

func TestRoutesAreGated(t *testing.T) {
	r, _ := newServer(t, nil)
	user := register(t, r, "member@estate.test")
	admin := register(t, r, adminEmail)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/plans", nil, nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/listings?category=hostel", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/me", nil, nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/me", nil, user).Code)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/admin/users", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/admin/users", nil, user).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/admin/users", nil, admin).Code)

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/builder/dashboard", nil, user).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/builder/dashboard", nil, admin).Code)

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/admin/debug/vars", nil, user).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/admin/debug/vars", nil, admin).Code)
}

func TestMaintenanceLetsAdminsAndAuthThrough(t *testing.T) {
	r, _ := newServer(t, func(c *config.Config) { c.MaintenanceMode = true })

	w := call(r, http.MethodGet, "/api/plans", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))

	user := register(t, r, "member@estate.test")
	admin := register(t, r, adminEmail)

	assert.Equal(t, http.StatusServiceUnavailable, call(r, http.MethodGet, "/api/me", nil, user).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/me", nil, admin).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, nil).Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	r, _ := newServer(t, func(c *config.Config) { c.AuthRateLimit = 2 })
	body := map[string]string{"email": "nobody@estate.test", "password": "wrong-password"}

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/auth/login", body, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/auth/login", body, nil).Code)
	w := call(r, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHealthReportsRedisOutage(t *testing.T) {
	r, mr := newServer(t, nil)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, nil).Code)

	mr.Close()
	w := call(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestSessionSurvivesRedisOutageAsUnavailable(t *testing.T) {
	r, mr := newServer(t, nil)
	user := register(t, r, "member@estate.test")

	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, call(r, http.MethodGet, "/api/session", nil, user).Code)

	listing := "/api/listings/" + uuid.NewString()
	w := call(r, http.MethodGet, listing, nil, user)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "a signed-in viewer is not served as anonymous")
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, listing, nil, nil).Code)
}

func TestRegistryMountsOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r)
	hits := 0
	reg.Use(func(c *gin.Context) { hits++; c.Next() })
	reg.Add(ModuleFunc(func(rg *gin.RouterGroup) { rg.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) }) }))
	reg.AddRoot(ModuleFunc(func(rg *gin.RouterGroup) { rg.GET("/live", func(c *gin.Context) { c.Status(http.StatusNoContent) }) }))
	reg.RegisterAll()
	assert.NotPanics(t, reg.RegisterAll)

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodGet, "/api/ping", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodGet, "/live", nil, nil).Code)
	assert.Equal(t, 1, hits)
}
