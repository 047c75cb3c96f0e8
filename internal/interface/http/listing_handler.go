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

type ListingHandler struct {
	Svc    *application.ListingService
	Logger *logrus.Logger
}

func NewListingHandler(svc *application.ListingService, logger *logrus.Logger) *ListingHandler {
	return &ListingHandler{Svc: svc, Logger: logger}
}

type listingRequest struct {
	OwnerID        string `json:"owner_id" binding:"omitempty,uuid"`
	Category       string `json:"category" binding:"required,category"`
	Title          string `json:"title" binding:"required,max=200"`
	Description    string `json:"description"`
	Location       string `json:"location" binding:"max=200"`
	Price          int64  `json:"price" binding:"gte=0"`
	ImageURL       string `json:"image_url" binding:"omitempty,url"`
	ContactName    string `json:"contact_name"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email" binding:"omitempty,email"`
	BrochureObject string `json:"brochure_object"`
}

func (r listingRequest) input() application.ListingInput {
	return application.ListingInput{
		OwnerID:        r.OwnerID,
		Category:       r.Category,
		Title:          r.Title,
		Description:    r.Description,
		Location:       r.Location,
		Price:          r.Price,
		ImageURL:       r.ImageURL,
		ContactName:    r.ContactName,
		ContactPhone:   r.ContactPhone,
		ContactEmail:   r.ContactEmail,
		BrochureObject: r.BrochureObject,
	}
}

func (h *ListingHandler) ByCategory(c *gin.Context) {
	ls, err := h.Svc.ByCategory(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toListingDTOs(ls), "listings", nil)
}

func (h *ListingHandler) Search(c *gin.Context) {
	ls, err := h.Svc.Search(c.Request.Context(), c.Query("q"), queryInt(c, "size", 10))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toListingDTOs(ls), "search results", nil)
}

// View reveals protected fields only to entitled callers.
func (h *ListingHandler) View(c *gin.Context) {
	id, ok := pathID(c, domain.ErrListingNotFound)
	if !ok {
		return
	}
	v, err := h.Svc.View(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toListingViewDTO(v), "listing", nil)
}

func (h *ListingHandler) Dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":         toUserDTO(d.User),
		"subscription": d.Status,
		"listings":     toListingDTOs(d.Listings),
	}, "dashboard", nil)
}

func (h *ListingHandler) Create(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toListingDTO(*l), "listing created", nil)
}

func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, domain.ErrListingNotFound)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toListingDTO(*l), "listing updated", nil)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, domain.ErrListingNotFound)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "listing deleted", nil)
}
