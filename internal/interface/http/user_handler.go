package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// Me returns the caller's profile with entitlement flags.
func (h *UserHandler) Me(c *gin.Context) {
	p := h.Svc.ProfileOf(middleware.CurrentUser(c))
	response.Success(c, http.StatusOK, toProfileDTO(p), "profile", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	users, err := h.Svc.ListUsers(c.Request.Context(), middleware.CurrentUser(c), limit, offset)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]int{"limit": limit, "offset": offset})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := pathID(c, domain.ErrUserNotFound)
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.ChangeRole(c.Request.Context(), middleware.CurrentUser(c), id, req.Role, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserDTO(*u), "role updated", nil)
}
