package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

type AuthHandler struct {
	Auth      *application.AuthService
	Stores    middleware.SessionStores
	Cookies   *helpers.Manager
	DeviceTTL time.Duration
	Logger    *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, stores middleware.SessionStores, cookies *helpers.Manager, deviceTTL time.Duration, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Stores: stores, Cookies: cookies, DeviceTTL: deviceTTL, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type federatedRequest struct {
	Assertion string `json:"assertion" binding:"required"`
}

// device returns the caller's device id, issuing one when absent, and keeps
// the device cookie alive.
func (h *AuthHandler) device(c *gin.Context) string {
	id, _ := middleware.Credentials(c)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	h.Cookies.SetDeviceID(c, id, time.Now().Add(h.DeviceTTL))
	return id
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deviceID := h.device(c)
	res, err := h.Auth.Register(c.Request.Context(), h.Stores.For(deviceID),
		application.NewUserInput{Name: req.Name, Email: req.Email, Password: req.Password}, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.started(c, http.StatusCreated, res, deviceID, "registered")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deviceID := h.device(c)
	res, err := h.Auth.Login(c.Request.Context(), h.Stores.For(deviceID), req.Email, req.Password, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.started(c, http.StatusOK, res, deviceID, "login successful")
}

func (h *AuthHandler) Federated(c *gin.Context) {
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	deviceID := h.device(c)
	res, err := h.Auth.LoginFederated(c.Request.Context(), h.Stores.For(deviceID), req.Assertion, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.started(c, http.StatusOK, res, deviceID, "login successful")
}

func (h *AuthHandler) started(c *gin.Context, status int, res *application.AuthResult, deviceID, msg string) {
	h.Cookies.SetSession(c, res.Session.Token, res.Session.ExpiresAt)
	response.Success(c, status, authDTO{
		User:    toUserDTO(*res.User),
		Session: toSessionDTO(*res.Session, deviceID, true),
	}, msg, nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if err := h.Auth.Logout(c.Request.Context(), h.Stores.For(p.DeviceID), requestMeta(c)); err != nil {
		writeError(c, h.Logger, domain.Unavailable(err))
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// Session returns the current session. Role is the live one.
func (h *AuthHandler) Session(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	s := *p.Session
	s.Role = p.User.Role
	response.Success(c, http.StatusOK, toSessionDTO(s, p.DeviceID, false), "session", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	store := h.Stores.For(p.DeviceID)
	ok, err := store.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, domain.Unavailable(err))
		return
	}
	if !ok {
		writeError(c, h.Logger, domain.ErrSessionExpired)
		return
	}
	sess, err := store.Get(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, domain.Unavailable(err))
		return
	}
	if sess == nil {
		writeError(c, h.Logger, domain.ErrSessionExpired)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	sess.Role = p.User.Role
	response.Success(c, http.StatusOK, toSessionDTO(*sess, p.DeviceID, false), "session refreshed", nil)
}
