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

type clientRequest struct {
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Notes             string     `json:"notes"`
	LastInteractionAt *time.Time `json:"lastInteractionAt"`
}

type clientResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Name              string     `json:"name"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`
	OwnerEmail        string     `json:"ownerEmail,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func toClientResponse(cl *model.Client) clientResponse {
	return clientResponse{
		ID: cl.ID, UserID: cl.UserID, Name: cl.Name, Email: cl.Email,
		Phone: cl.Phone, Notes: cl.Notes, LastInteractionAt: cl.LastInteractionAt,
		CreatedAt: cl.CreatedAt, UpdatedAt: cl.UpdatedAt,
	}
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Name == "" {
		badRequest(c, "name required")
		return
	}

	cl := &model.Client{
		ID:                uuid.New().String(),
		UserID:            middleware.UserID(c),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Notes:             req.Notes,
		LastInteractionAt: req.LastInteractionAt,
	}
	if err := h.store.CreateClient(c.Request.Context(), cl); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(cl))
}

func (h *Handler) ListClients(c *gin.Context) {
	uid := middleware.UserID(c)

	if c.Query("all") == "true" {
		set, err := h.effectiveRoles(c.Request.Context(), uid)
		if err != nil {
			fail(c, err)
			return
		}
		if !set.IsAdmin() {
			forbidden(c, "admin role required")
			return
		}
		all, err := h.store.ListAllClients(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]clientResponse, len(all))
		for i := range all {
			out[i] = toClientResponse(&all[i].Client)
			out[i].OwnerEmail = all[i].OwnerEmail
		}
		c.JSON(http.StatusOK, out)
		return
	}

	clients, err := h.store.ListClients(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]clientResponse, len(clients))
	for i := range clients {
		out[i] = toClientResponse(&clients[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetClient(c *gin.Context) {
	cl, err := h.store.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if cl.UserID != middleware.UserID(c) {
		fail(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(cl))
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Name == "" {
		badRequest(c, "name required")
		return
	}

	cl := &model.Client{
		ID:                c.Param("id"),
		UserID:            middleware.UserID(c),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Notes:             req.Notes,
		LastInteractionAt: req.LastInteractionAt,
	}
	if err := h.store.UpdateClient(c.Request.Context(), cl); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(cl))
}

func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.store.DeleteClient(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
