package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/session"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

const (
	ctxPrincipalKey = "principal"
	ctxResolvedKey  = "principal_resolved"

	// DeviceHeader carries the device id for non-browser clients.
	DeviceHeader = "X-Device-ID"
)

// Principal is the authenticated caller. User is always the live registry
// record, never the session snapshot.
type Principal struct {
	User     *entity.User
	Session  *entity.Session
	DeviceID string
}

// SessionResolver checks a presented token against the device's session.
type SessionResolver interface {
	Resolve(ctx context.Context, store *session.Store, token string) (*entity.User, *entity.Session, error)
}

// SessionStores returns the session store of one device.
type SessionStores interface {
	For(deviceID string) *session.Store
}

type Authenticator struct {
	Resolver SessionResolver
	Stores   SessionStores
}

func NewAuthenticator(resolver SessionResolver, stores SessionStores) *Authenticator {
	return &Authenticator{Resolver: resolver, Stores: stores}
}

// Credentials reads the device id and session token from cookies, falling
// back to X-Device-ID and a Bearer Authorization header.
func Credentials(c *gin.Context) (deviceID, token string) {
	deviceID, _ = c.Cookie(helpers.DeviceIDCookie)
	if deviceID == "" {
		deviceID = strings.TrimSpace(c.GetHeader(DeviceHeader))
	}
	token, _ = c.Cookie(helpers.SessionCookie)
	if token == "" {
		if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			token = strings.TrimSpace(h[7:])
		}
	}
	return deviceID, token
}

// Principal resolves the caller once per request. It returns nil for
// anonymous callers and an error only when the session cannot be checked.
func (a *Authenticator) Principal(c *gin.Context) (*Principal, error) {
	if c.GetBool(ctxResolvedKey) {
		return PrincipalFrom(c), nil
	}
	deviceID, token := Credentials(c)
	if deviceID == "" || token == "" {
		c.Set(ctxResolvedKey, true)
		return nil, nil
	}
	u, sess, err := a.Resolver.Resolve(c.Request.Context(), a.Stores.For(deviceID), token)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, err
		}
		c.Set(ctxResolvedKey, true)
		return nil, nil
	}
	p := &Principal{User: u, Session: sess, DeviceID: deviceID}
	c.Set(ctxPrincipalKey, p)
	c.Set(ctxResolvedKey, true)
	return p, nil
}

// Required aborts with 401 unless a valid session is presented.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Principal(c)
		if err != nil {
			abortUnavailable(c)
			return
		}
		if p == nil {
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		c.Next()
	}
}

// Optional resolves the caller when credentials are present. Anonymous
// callers continue; a caller whose session cannot be checked gets 503 rather
// than being served as anonymous.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := a.Principal(c); err != nil {
			abortUnavailable(c)
			return
		}
		c.Next()
	}
}

func abortUnavailable(c *gin.Context) {
	c.Header("Retry-After", "5")
	response.Abort(c, http.StatusServiceUnavailable, "session store unavailable", nil)
}

// PrincipalFrom returns the caller set by the authenticator, or nil.
func PrincipalFrom(c *gin.Context) *Principal {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

// CurrentUser is the live user of the caller, or nil when anonymous.
func CurrentUser(c *gin.Context) *entity.User {
	if p := PrincipalFrom(c); p != nil {
		return p.User
	}
	return nil
}
