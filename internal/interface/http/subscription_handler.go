package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/interface/middleware"
	"github.com/oksasatya/estate-marketplace/pkg/response"
)

type SubscriptionHandler struct {
	Svc    *application.SubscriptionService
	Logger *logrus.Logger
}

func NewSubscriptionHandler(svc *application.SubscriptionService, logger *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Svc: svc, Logger: logger}
}

type subscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required,planid"`
}

func (h *SubscriptionHandler) Plans(c *gin.Context) {
	response.Success(c, http.StatusOK, entity.Catalog(), "plans", nil)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.Subscribe(c.Request.Context(), middleware.CurrentUser(c).ID, req.PlanID, requestMeta(c))
	h.reply(c, u, err, "subscribed")
}

func (h *SubscriptionHandler) ActivateBuilder(c *gin.Context) {
	u, err := h.Svc.ActivateBuilder(c.Request.Context(), middleware.CurrentUser(c).ID, requestMeta(c))
	h.reply(c, u, err, "builder subscription active")
}

func (h *SubscriptionHandler) CancelBuilder(c *gin.Context) {
	u, err := h.Svc.CancelBuilder(c.Request.Context(), middleware.CurrentUser(c).ID, requestMeta(c))
	h.reply(c, u, err, "builder subscription cancelled")
}

func (h *SubscriptionHandler) reply(c *gin.Context, u *entity.User, err error, msg string) {
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserDTO(*u), msg, nil)
}
