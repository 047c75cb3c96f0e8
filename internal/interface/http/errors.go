package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
	"github.com/oksasatya/estate-marketplace/pkg/response"
	"github.com/oksasatya/estate-marketplace/pkg/validation"
)

// writeError maps domain errors to status codes. Anything unknown is logged
// and reported as 500 without details.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var locked *domain.AccountLockedError
	switch {
	case errors.As(err, &locked):
		c.Header("Retry-After", strconv.Itoa(int((locked.RetryAfter+time.Second-1)/time.Second)))
		response.Error[any](c, http.StatusTooManyRequests, locked.Error(), nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, domain.ErrSessionExpired):
		response.Error[any](c, http.StatusUnauthorized, domain.ErrSessionExpired.Error(), nil)
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Error[any](c, http.StatusUnauthorized, domain.ErrUnauthenticated.Error(), nil)
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, domain.ErrDuplicateEmail.Error(), nil)
	case errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidCategory):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrProjectLimitReached):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrListingNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrProviderUnavailable):
		helpers.LogError(logger, "provider unavailable", err, logrus.Fields{"path": c.FullPath()})
		c.Header("Retry-After", "5")
		response.Error[any](c, http.StatusServiceUnavailable, "service temporarily unavailable, please retry", nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{"path": c.FullPath(), "request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func badRequest(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// pathID returns the :id parameter. Malformed ids cannot exist, so they
// answer with notFound.
func pathID(c *gin.Context, notFound error) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusNotFound, notFound.Error(), nil)
		return "", false
	}
	return id, true
}
