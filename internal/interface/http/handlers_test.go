package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/redisstore"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/internal/session"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
	"github.com/oksasatya/estate-marketplace/pkg/validation"
)

const adminEmail = "admin@estate.test"

type testAPI struct {
	r        *gin.Engine
	users    *memory.UserRepository
	listings *memory.ListingRepository
	audit    *memory.AuditRepository
	mr       *miniredis.Miniredis
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

type creds struct {
	DeviceID string
	Token    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := memory.NewUserRepository()
	listings := memory.NewListingRepository()
	audit := memory.NewAuditRepository()

	engine := application.NewEngine(nil)
	reg := application.NewRegistry(users, adminEmail, 1000)
	unlocks := redisstore.NewUnlocks(rdb)
	stores := session.NewDeviceStores(rdb, session.WithTTL(time.Hour))
	auth := application.NewAuthService(application.NewLocalProvider(reg, time.Second), nil, reg,
		redisstore.NewLockout(rdb, 3, time.Minute, log), nil, audit, log)
	authn := middleware.NewAuthenticator(auth, stores)

	ah := NewAuthHandler(auth, stores, helpers.NewCookie("localhost", false), time.Hour, log)
	uh := NewUserHandler(application.NewUserService(users, engine, audit, log), log)
	sh := NewSubscriptionHandler(application.NewSubscriptionService(users, engine, unlocks, nil, audit, log), log)
	lh := NewListingHandler(application.NewListingService(listings, users, engine, unlocks, nil, nil, log), log)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.POST("/auth/federated", ah.Federated)
	api.GET("/plans", sh.Plans)
	api.GET("/listings", lh.ByCategory)
	api.GET("/listings/search", lh.Search)
	api.GET("/listings/:id", authn.Optional(), lh.View)

	authed := api.Group("/", authn.Required())
	authed.POST("/auth/logout", ah.Logout)
	authed.GET("/session", ah.Session)
	authed.POST("/session/refresh", ah.Refresh)
	authed.GET("/me", uh.Me)
	authed.POST("/subscriptions", sh.Subscribe)
	authed.POST("/subscriptions/builder", sh.ActivateBuilder)
	authed.DELETE("/subscriptions/builder", middleware.RequireBuilderDashboard(), sh.CancelBuilder)
	authed.GET("/builder/dashboard", middleware.RequireBuilderDashboard(), lh.Dashboard)

	admin := api.Group("/admin", authn.Required(), middleware.RequireAdmin())
	admin.POST("/listings", lh.Create)
	admin.PUT("/listings/:id", lh.Update)
	admin.DELETE("/listings/:id", lh.Delete)
	admin.GET("/users", uh.List)
	admin.PUT("/users/:id/role", uh.ChangeRole)

	return &testAPI{r: r, users: users, listings: listings, audit: audit, mr: mr}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, c *creds) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if c != nil {
		req.Header.Set(middleware.DeviceHeader, c.DeviceID)
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testAPI) register(t *testing.T, email string) *creds {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Test", "email": email, "password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out authDTO
	decode(t, w, &out)
	return &creds{DeviceID: out.Session.DeviceID, Token: out.Session.SessionToken}
}

func (a *testAPI) addListing(t *testing.T, ownerID string) entity.Listing {
	t.Helper()
	l := entity.Listing{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Category:     entity.CategoryProperty,
		Title:        "Harbour View",
		Location:     "Kochi",
		Price:        4500000,
		ContactName:  "Asha",
		ContactPhone: "+91 98470 00000",
		ContactEmail: "asha@builder.test",
	}
	require.NoError(t, a.listings.Create(context.Background(), &l))
	return l
}

func TestRegisterSetsCookiesAndReturnsSession(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Mira", "email": "mira@estate.test", "password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out authDTO
	env := decode(t, w, &out)
	assert.True(t, env.Success)
	assert.Equal(t, "user", out.User.Role)
	assert.Equal(t, "No Plan", out.User.Plan)
	require.NotNil(t, out.User.ProjectsLimit)
	assert.Equal(t, 0, *out.User.ProjectsLimit)
	assert.NotEmpty(t, out.Session.SessionToken)
	assert.NotEmpty(t, out.Session.DeviceID)

	names := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		names[ck.Name] = true
	}
	assert.True(t, names[helpers.SessionCookie])
	assert.True(t, names[helpers.DeviceIDCookie])
	assert.Equal(t, []string{"register"}, a.audit.Actions())
}

func TestRegisterRejectsDuplicateAndBadPayload(t *testing.T) {
	a := newTestAPI(t)
	a.register(t, "dup@estate.test")

	w := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "dup@estate.test", "password": "correct-horse",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "short@estate.test", "password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Contains(t, env.Error, "password")
}

func TestAdminEmailRegistersAsAdmin(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, adminEmail)

	var s sessionDTO
	decode(t, a.do(t, http.MethodGet, "/api/session", nil, c), &s)
	assert.Equal(t, "admin", s.Role)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	a := newTestAPI(t)
	a.register(t, "lock@estate.test")
	bad := map[string]string{"email": "lock@estate.test", "password": "wrong-password"}

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodPost, "/api/auth/login", bad, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodPost, "/api/auth/login", bad, nil).Code)
	w := a.do(t, http.MethodPost, "/api/auth/login", bad, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	good := map[string]string{"email": "lock@estate.test", "password": "correct-horse"}
	assert.Equal(t, http.StatusTooManyRequests, a.do(t, http.MethodPost, "/api/auth/login", good, nil).Code)

	a.mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/auth/login", good, nil).Code)
}

func TestFederatedLoginUnavailableWithoutProvider(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodPost, "/api/auth/federated", map[string]string{"assertion": "x.y.z"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionRequiresMatchingToken(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, "tok@estate.test")

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/session", nil, c).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/session", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		a.do(t, http.MethodGet, "/api/session", nil, &creds{DeviceID: c.DeviceID, Token: "forged"}).Code)
}

func TestLogoutEndsSession(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, "bye@estate.test")

	w := a.do(t, http.MethodPost, "/api/auth/logout", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/session", nil, c).Code)
}

func TestRefreshExtendsSession(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, "fresh@estate.test")

	var before sessionDTO
	decode(t, a.do(t, http.MethodGet, "/api/session", nil, c), &before)
	time.Sleep(10 * time.Millisecond)

	w := a.do(t, http.MethodPost, "/api/session/refresh", nil, c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var after sessionDTO
	decode(t, w, &after)
	assert.True(t, after.ExpiresAt.After(before.ExpiresAt))
}

func TestSubscribeUpdatesProfile(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, "sub@estate.test")

	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodPost, "/api/subscriptions", map[string]string{"plan_id": "gold"}, c).Code)

	w := a.do(t, http.MethodPost, "/api/subscriptions", map[string]string{"plan_id": "starter"}, c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p profileDTO
	decode(t, a.do(t, http.MethodGet, "/api/me", nil, c), &p)
	assert.Equal(t, "Starter", p.User.Plan)
	assert.True(t, p.CanAccessPremium)
	require.NotNil(t, p.RemainingViews)
	assert.Equal(t, 5, *p.RemainingViews)
	assert.True(t, p.Subscription.IsActive)
	assert.Equal(t, 7, p.Subscription.DaysRemaining)
	assert.False(t, p.CanAccessBuilderPanel)
}

func TestBuilderSubscriptionAndDashboard(t *testing.T) {
	a := newTestAPI(t)
	c := a.register(t, "builder@estate.test")

	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/api/builder/dashboard", nil, c).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodDelete, "/api/subscriptions/builder", nil, c).Code)

	w := a.do(t, http.MethodPost, "/api/subscriptions/builder", nil, c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u userDTO
	decode(t, w, &u)
	assert.Equal(t, "builder", u.Role)
	assert.Nil(t, u.ProjectsLimit)

	a.addListing(t, u.ID)
	w = a.do(t, http.MethodGet, "/api/builder/dashboard", nil, c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dash struct {
		Listings []listingDTO `json:"listings"`
	}
	decode(t, w, &dash)
	require.Len(t, dash.Listings, 1)
	assert.Equal(t, "Asha", dash.Listings[0].ContactName)

	w = a.do(t, http.MethodDelete, "/api/subscriptions/builder", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &u)
	assert.Equal(t, "builder", u.Role)
	assert.Equal(t, "No Plan", u.Plan)
}

func TestListingViewRevealsOnlyToEntitledCallers(t *testing.T) {
	a := newTestAPI(t)
	l := a.addListing(t, "")
	path := "/api/listings/" + l.ID

	var anon listingViewDTO
	decode(t, a.do(t, http.MethodGet, path, nil, nil), &anon)
	assert.False(t, anon.Revealed)
	assert.Equal(t, application.LockedSignIn, anon.LockedReason)
	assert.Empty(t, anon.Listing.ContactPhone)

	c := a.register(t, "viewer@estate.test")
	var noPlan listingViewDTO
	decode(t, a.do(t, http.MethodGet, path, nil, c), &noPlan)
	assert.False(t, noPlan.Revealed)
	assert.Equal(t, application.LockedSubscription, noPlan.LockedReason)

	require.Equal(t, http.StatusOK,
		a.do(t, http.MethodPost, "/api/subscriptions", map[string]string{"plan_id": "starter"}, c).Code)
	var seen listingViewDTO
	decode(t, a.do(t, http.MethodGet, path, nil, c), &seen)
	assert.True(t, seen.Revealed)
	assert.Equal(t, "+91 98470 00000", seen.Listing.ContactPhone)
	require.NotNil(t, seen.RemainingViews)
	assert.Equal(t, 4, *seen.RemainingViews)

	// reopening an unlocked listing is free
	decode(t, a.do(t, http.MethodGet, path, nil, c), &seen)
	assert.Equal(t, 4, *seen.RemainingViews)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/listings/"+uuid.NewString(), nil, c).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/listings/not-a-uuid", nil, c).Code)
}

func TestListingsByCategoryAreRedacted(t *testing.T) {
	a := newTestAPI(t)
	a.addListing(t, "")

	var ls []listingDTO
	decode(t, a.do(t, http.MethodGet, "/api/listings?category=property", nil, nil), &ls)
	require.Len(t, ls, 1)
	assert.Empty(t, ls[0].ContactEmail)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/listings?category=castle", nil, nil).Code)

	var found []listingDTO
	decode(t, a.do(t, http.MethodGet, "/api/listings/search?q=harbour", nil, nil), &found)
	assert.Empty(t, found)
}

func TestAdminManagesListingsAndRoles(t *testing.T) {
	a := newTestAPI(t)
	admin := a.register(t, adminEmail)
	user := a.register(t, "member@estate.test")

	body := map[string]any{"category": "rental", "title": "Lake Flat", "price": 25000, "contact_name": "Ravi"}
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/api/admin/listings", body, user).Code)

	w := a.do(t, http.MethodPost, "/api/admin/listings", body, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created listingDTO
	decode(t, w, &created)
	assert.Equal(t, "rental", created.Category)

	body["title"] = "Lake Flat 2"
	w = a.do(t, http.MethodPut, "/api/admin/listings/"+created.ID, body, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, "/api/admin/listings/"+created.ID, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, "/api/admin/listings/"+created.ID, nil, admin).Code)

	var users []userDTO
	decode(t, a.do(t, http.MethodGet, "/api/admin/users?limit=10", nil, admin), &users)
	require.Len(t, users, 2)

	member, err := a.users.GetByEmail(context.Background(), "member@estate.test")
	require.NoError(t, err)
	w = a.do(t, http.MethodPut, "/api/admin/users/"+member.ID+"/role", map[string]string{"role": "builder"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the member's existing session sees the new role immediately
	var s sessionDTO
	decode(t, a.do(t, http.MethodGet, "/api/session", nil, user), &s)
	assert.Equal(t, "builder", s.Role)

	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodPut, "/api/admin/users/"+member.ID+"/role", map[string]string{"role": "owner"}, admin).Code)
}

func TestPlansCatalog(t *testing.T) {
	a := newTestAPI(t)
	var plans []entity.PlanSpec
	decode(t, a.do(t, http.MethodGet, "/api/plans", nil, nil), &plans)
	require.Len(t, plans, 4)
	assert.Equal(t, "starter", plans[0].ID)
	assert.True(t, plans[3].Unlimited)
}
