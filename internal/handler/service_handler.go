package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backoffice-api/internal/middleware"
	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

type serviceRequest struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

type serviceResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toServiceResponse(s *model.Service) serviceResponse {
	return serviceResponse{
		ID: s.ID, UserID: s.UserID, Name: s.Name,
		DurationMinutes: s.DurationMinutes, Price: s.Price,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func (r *serviceRequest) validate() string {
	if r.Name == "" {
		return "name required"
	}
	if r.DurationMinutes <= 0 {
		return "duration must be positive"
	}
	if r.Price < 0 {
		return "price cannot be negative"
	}
	return ""
}

func (h *Handler) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	svc := &model.Service{
		ID:              uuid.New().String(),
		UserID:          middleware.UserID(c),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	}
	if err := h.store.CreateService(c.Request.Context(), svc); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toServiceResponse(svc))
}

func (h *Handler) ListServices(c *gin.Context) {
	uid := middleware.UserID(c)

	var (
		services []model.Service
		err      error
	)
	if c.Query("all") == "true" {
		set, rerr := h.effectiveRoles(c.Request.Context(), uid)
		if rerr != nil {
			fail(c, rerr)
			return
		}
		if !set.IsAdmin() {
			forbidden(c, "admin role required")
			return
		}
		services, err = h.store.ListAllServices(c.Request.Context())
	} else {
		services, err = h.store.ListServices(c.Request.Context(), uid)
	}
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]serviceResponse, len(services))
	for i := range services {
		out[i] = toServiceResponse(&services[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.store.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if svc.UserID != middleware.UserID(c) {
		fail(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toServiceResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	svc := &model.Service{
		ID:              c.Param("id"),
		UserID:          middleware.UserID(c),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	}
	if err := h.store.UpdateService(c.Request.Context(), svc); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toServiceResponse(svc))
}

func (h *Handler) DeleteService(c *gin.Context) {
	if err := h.store.DeleteService(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
