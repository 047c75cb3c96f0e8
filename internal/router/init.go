package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/container"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/redisstore"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/search"
	handlers "github.com/oksasatya/estate-marketplace/internal/interface/http"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/internal/router/modules"
	"github.com/oksasatya/estate-marketplace/internal/session"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

// Deps are the services and handlers shared by the route modules.
type Deps struct {
	Authn  *middleware.Authenticator
	Stores *session.DeviceStores

	Auth          *application.AuthService
	Users         *application.UserService
	Subscriptions *application.SubscriptionService
	Listings      *application.ListingService

	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	ListingHandler      *handlers.ListingHandler
}

// BuildDeps wires services from the container singletons. Redis and the
// repositories are required; everything else is optional.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	repos := container.GetRepositories()

	engine := application.NewEngine(nil)
	registry := application.NewRegistry(repos.Users, cfg.AdminEmail, cfg.PasswordKDFIterations)
	local := application.NewLocalProvider(registry, cfg.ProviderTimeout)

	var federated *application.FederatedProvider
	if am := container.GetAssertions(); am != nil {
		federated = application.NewFederatedProvider(am, registry, cfg.ProviderTimeout)
	}
	var notifier application.Notifier
	if pub := container.GetRabbitPub(); pub != nil {
		notifier = application.NewMailNotifier(pub, cfg.Brand())
	}
	var index application.ListingIndex
	if es := container.GetES(); es != nil {
		index = search.NewListingIndex(es, cfg.ESListingsIndex)
	}
	var brochures application.BrochureSigner
	if b := container.GetBrochures(); b != nil {
		brochures = b
	}

	lockout := redisstore.NewLockout(rdb, cfg.LoginMaxAttempts, cfg.LoginLockoutWindow, logger)
	unlocks := redisstore.NewUnlocks(rdb)
	stores := session.NewDeviceStores(rdb, session.WithTTL(cfg.SessionTTL))

	d := Deps{Stores: stores}
	d.Auth = application.NewAuthService(local, federated, registry, lockout, notifier, repos.Audit, logger)
	d.Users = application.NewUserService(repos.Users, engine, repos.Audit, logger)
	d.Subscriptions = application.NewSubscriptionService(repos.Users, engine, unlocks, notifier, repos.Audit, logger)
	d.Listings = application.NewListingService(repos.Listings, repos.Users, engine, unlocks, index, brochures, logger)
	d.Authn = middleware.NewAuthenticator(d.Auth, stores)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	d.AuthHandler = handlers.NewAuthHandler(d.Auth, stores, cookies, cfg.DeviceCookieTTL, logger)
	d.UserHandler = handlers.NewUserHandler(d.Users, logger)
	d.SubscriptionHandler = handlers.NewSubscriptionHandler(d.Subscriptions, logger)
	d.ListingHandler = handlers.NewListingHandler(d.Listings, logger)
	return d
}

// InitModules adds the global API middleware and every feature module to the
// registry. Call it once during startup, before RegisterAll.
func InitModules(r *Registry) Deps {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	d := BuildDeps()

	r.Use(
		middleware.RealIP(),
		middleware.Maintenance(cfg.MaintenanceMode, d.Authn.Principal, "/api/auth"),
	)
	r.Add(modules.NewAuthModule(d.AuthHandler, d.Authn, rdb, cfg.AuthRateLimit, cfg.AuthRateWindow))
	r.Add(modules.NewAccountModule(d.UserHandler, d.SubscriptionHandler, d.Authn))
	r.Add(modules.NewListingModule(d.ListingHandler, d.Authn))
	r.Add(modules.NewAdminModule(d.ListingHandler, d.UserHandler, d.Authn, rdb))
	r.Add(modules.NewDebugModule(d.Authn))

	r.AddRoot(ModuleFunc(func(rg *gin.RouterGroup) { rg.GET("/health", Health) }))
	return d
}

// Health reports whether Redis and, when configured, Postgres answer.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"redis": "ok"}
	status := http.StatusOK
	if rdb := container.GetRedis(); rdb == nil || rdb.Ping(ctx).Err() != nil {
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = "ok"
		if err := pool.Ping(ctx); err != nil {
			checks["postgres"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		response.Error[any](c, status, "unhealthy", checks)
		return
	}
	response.Success(c, status, checks, "healthy", nil)
}
