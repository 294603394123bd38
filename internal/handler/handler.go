package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backoffice-api/internal/roles"
	"backoffice-api/internal/store"
)

type Handler struct {
	store      store.Store
	secret     string
	log        *zap.Logger
	refreshTTL time.Duration
}

func New(st store.Store, secret string, log *zap.Logger, refreshTTL time.Duration) *Handler {
	return &Handler{store: st, secret: secret, log: log, refreshTTL: refreshTTL}
}

// effectiveRoles is the single place the role set is computed; everything
// that authorizes consults the returned set.
func (h *Handler) effectiveRoles(ctx context.Context, userID string) (roles.Set, error) {
	labels, err := h.store.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return roles.Effective(labels), nil
}

// fail maps store errors onto the HTTP error taxonomy.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "time conflicts with existing appointment"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, store.ErrReferenced):
		c.JSON(http.StatusConflict, gin.H{"error": "still referenced by other records"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"error": msg})
}
