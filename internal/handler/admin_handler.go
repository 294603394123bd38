package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-api/internal/metrics"
	"backoffice-api/internal/middleware"
	"backoffice-api/internal/model"
	"backoffice-api/internal/roles"
	"backoffice-api/internal/store"
)

// requireAdmin loads the caller's effective role set and rejects non-admins.
func (h *Handler) requireAdmin(c *gin.Context) (adminID string, ok bool) {
	adminID = middleware.UserID(c)
	set, err := h.effectiveRoles(c.Request.Context(), adminID)
	if err != nil {
		fail(c, err)
		return "", false
	}
	if !set.IsAdmin() {
		forbidden(c, "admin role required")
		return "", false
	}
	return adminID, true
}

type adminNoteRequest struct {
	Notes string `json:"notes"`
}

// DeleteUser removes a user and everything they own in one transaction:
// roles, profile, clients, services, appointments, invoices, then the
// account itself. Audit rows are never part of the cascade.
func (h *Handler) DeleteUser(c *gin.Context) {
	adminID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == adminID {
		badRequest(c, "cannot delete your own account")
		return
	}

	var req adminNoteRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	if err := h.store.DeleteUserCascade(c.Request.Context(), targetID); err != nil {
		var ce *store.CascadeError
		if errors.As(err, &ce) && !errors.Is(err, store.ErrNotFound) {
			h.log.Error("user cascade failed",
				zap.String("target", targetID), zap.String("step", ce.Step), zap.Error(ce.Err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": fmt.Sprintf("deletion failed at step %s", ce.Step),
			})
			return
		}
		fail(c, err)
		return
	}

	metrics.UserDeletionsTotal.Inc()
	h.audit(c, &model.AdminAction{
		AdminID:      adminID,
		Action:       model.ActionDeleteUser,
		TargetUserID: targetID,
		Notes:        req.Notes,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "user and all associated data deleted",
	})
}

type roleUpdateRequest struct {
	Role  string `json:"role"`
	Notes string `json:"notes"`
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	adminID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if !roles.Valid(req.Role) {
		badRequest(c, "role must be user or admin")
		return
	}

	if _, err := h.store.UserByID(c.Request.Context(), targetID); err != nil {
		fail(c, err)
		return
	}

	created, err := h.store.UpsertRole(c.Request.Context(), targetID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}

	action := model.ActionUpdateRole
	if created {
		action = model.ActionAssignRole
	}
	h.audit(c, &model.AdminAction{
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetID,
		Notes:        req.Notes,
	})

	c.JSON(http.StatusOK, gin.H{"userId": targetID, "role": req.Role})
}

type adminActionResponse struct {
	ID           string    `json:"id"`
	AdminID      string    `json:"adminId"`
	Action       string    `json:"action"`
	TargetUserID string    `json:"targetUserId"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) ListAdminActions(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	actions, err := h.store.ListAdminActions(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]adminActionResponse, len(actions))
	for i, a := range actions {
		out[i] = adminActionResponse{
			ID: a.ID, AdminID: a.AdminID, Action: a.Action,
			TargetUserID: a.TargetUserID, Notes: a.Notes, CreatedAt: a.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// audit appends an admin action best-effort: a failure is logged, never
// surfaced, so the operation it records still succeeds.
func (h *Handler) audit(c *gin.Context, a *model.AdminAction) {
	a.ID = uuid.New().String()
	if err := h.store.AppendAdminAction(c.Request.Context(), a); err != nil {
		h.log.Warn("audit append failed",
			zap.String("action", a.Action), zap.String("target", a.TargetUserID), zap.Error(err))
		return
	}
	metrics.AdminActionsCounter.WithLabelValues(a.Action).Inc()
}
