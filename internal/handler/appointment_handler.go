package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-api/internal/metrics"
	"backoffice-api/internal/middleware"
	"backoffice-api/internal/model"
	"backoffice-api/internal/schedule"
	"backoffice-api/internal/store"
)

type appointmentRequest struct {
	ClientID  string    `json:"clientId"`
	ServiceID string    `json:"serviceId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
}

type appointmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ClientID  string    `json:"clientId"`
	ServiceID string    `json:"serviceId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAppointmentResponse(a *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID: a.ID, UserID: a.UserID, ClientID: a.ClientID, ServiceID: a.ServiceID,
		StartTime: a.StartTime, EndTime: a.EndTime, Status: a.Status, Notes: a.Notes,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func validAppointmentStatus(s string) bool {
	switch s {
	case model.AppointmentPending, model.AppointmentConfirmed, model.AppointmentCancelled:
		return true
	}
	return false
}

// validateAppointmentRefs checks the client and service exist and belong to
// the caller. Foreign rows read as not-found to hide their existence.
func (h *Handler) validateAppointmentRefs(c *gin.Context, ownerID, clientID, serviceID string) bool {
	cl, err := h.store.GetClient(c.Request.Context(), clientID)
	if err != nil || cl.UserID != ownerID {
		badRequest(c, "unknown client")
		return false
	}
	svc, err := h.store.GetService(c.Request.Context(), serviceID)
	if err != nil || svc.UserID != ownerID {
		badRequest(c, "unknown service")
		return false
	}
	return true
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	uid := middleware.UserID(c)

	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ClientID == "" || req.ServiceID == "" {
		badRequest(c, "client and service required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		badRequest(c, "times required")
		return
	}
	if err := schedule.ValidateInterval(req.StartTime, req.EndTime); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" {
		req.Status = model.AppointmentConfirmed
	}
	if !validAppointmentStatus(req.Status) {
		badRequest(c, "invalid status")
		return
	}
	if !h.validateAppointmentRefs(c, uid, req.ClientID, req.ServiceID) {
		return
	}

	// fast pre-check; the store re-checks atomically at write time
	if dup, err := h.store.HasOverlap(c.Request.Context(), uid, req.StartTime, req.EndTime, ""); err != nil {
		fail(c, err)
		return
	} else if dup {
		metrics.ConflictRejections.Inc()
		fail(c, store.ErrConflict)
		return
	}

	apt := &model.Appointment{
		ID:        uuid.New().String(),
		UserID:    uid,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if err := h.store.CreateAppointment(c.Request.Context(), apt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.ConflictRejections.Inc()
		}
		fail(c, err)
		return
	}

	// booking counts as an interaction with the client
	if err := h.store.TouchClient(c.Request.Context(), req.ClientID, apt.StartTime); err != nil {
		h.log.Warn("touch client failed", zap.String("client", req.ClientID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, toAppointmentResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
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
		apts, err := h.store.ListAllAppointments(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, appointmentList(apts))
		return
	}

	apts, err := h.store.ListAppointments(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmentList(apts))
}

func appointmentList(apts []model.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, len(apts))
	for i := range apts {
		out[i] = toAppointmentResponse(&apts[i])
	}
	return out
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.store.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	// ownership — 404 not 403 to hide existence
	if apt.UserID != middleware.UserID(c) {
		fail(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toAppointmentResponse(apt))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	uid := middleware.UserID(c)
	id := c.Param("id")

	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ClientID == "" || req.ServiceID == "" {
		badRequest(c, "client and service required")
		return
	}
	if err := schedule.ValidateInterval(req.StartTime, req.EndTime); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !validAppointmentStatus(req.Status) {
		badRequest(c, "invalid status")
		return
	}
	if !h.validateAppointmentRefs(c, uid, req.ClientID, req.ServiceID) {
		return
	}

	// exclude self from the overlap check
	if dup, err := h.store.HasOverlap(c.Request.Context(), uid, req.StartTime, req.EndTime, id); err != nil {
		fail(c, err)
		return
	} else if dup {
		metrics.ConflictRejections.Inc()
		fail(c, store.ErrConflict)
		return
	}

	apt := &model.Appointment{
		ID:        id,
		UserID:    uid,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if err := h.store.UpdateAppointment(c.Request.Context(), apt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.ConflictRejections.Inc()
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAppointmentResponse(apt))
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.store.DeleteAppointment(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
