package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backoffice-api/internal/middleware"
	"backoffice-api/internal/model"
	"backoffice-api/internal/pdf"
	"backoffice-api/internal/store"
)

type invoiceRequest struct {
	ClientID      string     `json:"clientId"`
	AppointmentID string     `json:"appointmentId"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"dueDate"`
}

type invoiceResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	ClientID      string     `json:"clientId"`
	AppointmentID string     `json:"appointmentId,omitempty"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	PaidDate      *time.Time `json:"paidDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toInvoiceResponse(inv *model.Invoice) invoiceResponse {
	return invoiceResponse{
		ID: inv.ID, UserID: inv.UserID, ClientID: inv.ClientID,
		AppointmentID: inv.AppointmentID, Amount: inv.Amount, Status: inv.Status,
		DueDate: inv.DueDate, PaidDate: inv.PaidDate,
		CreatedAt: inv.CreatedAt, UpdatedAt: inv.UpdatedAt,
	}
}

func validInvoiceStatus(s string) bool {
	switch s {
	case model.InvoicePending, model.InvoicePaid, model.InvoiceCancelled, model.InvoiceOverdue:
		return true
	}
	return false
}

// validateInvoiceRefs checks that the client, and the appointment when given,
// exist and belong to the caller.
func (h *Handler) validateInvoiceRefs(c *gin.Context, ownerID, clientID, appointmentID string) bool {
	cl, err := h.store.GetClient(c.Request.Context(), clientID)
	if err != nil || cl.UserID != ownerID {
		badRequest(c, "unknown client")
		return false
	}
	if appointmentID != "" {
		apt, err := h.store.GetAppointment(c.Request.Context(), appointmentID)
		if err != nil || apt.UserID != ownerID {
			badRequest(c, "unknown appointment")
			return false
		}
	}
	return true
}

// paidDateFor enforces the server-owned paid_date rule: set exactly when the
// status is paid, cleared otherwise. Clients never supply it.
func paidDateFor(status string, prev *model.Invoice) *time.Time {
	if status != model.InvoicePaid {
		return nil
	}
	if prev != nil && prev.Status == model.InvoicePaid && prev.PaidDate != nil {
		return prev.PaidDate
	}
	now := time.Now().UTC()
	return &now
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	uid := middleware.UserID(c)

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ClientID == "" {
		badRequest(c, "client required")
		return
	}
	if req.Amount < 0 {
		badRequest(c, "amount cannot be negative")
		return
	}
	if req.Status == "" {
		req.Status = model.InvoicePending
	}
	if !validInvoiceStatus(req.Status) {
		badRequest(c, "invalid status")
		return
	}
	if !h.validateInvoiceRefs(c, uid, req.ClientID, req.AppointmentID) {
		return
	}

	inv := &model.Invoice{
		ID:            uuid.New().String(),
		UserID:        uid,
		ClientID:      req.ClientID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Status:        req.Status,
		DueDate:       req.DueDate,
		PaidDate:      paidDateFor(req.Status, nil),
	}
	if err := h.store.CreateInvoice(c.Request.Context(), inv); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

func (h *Handler) ListInvoices(c *gin.Context) {
	uid := middleware.UserID(c)

	var (
		invoices []model.Invoice
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
		invoices, err = h.store.ListAllInvoices(c.Request.Context())
	} else {
		invoices, err = h.store.ListInvoices(c.Request.Context(), uid)
	}
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]invoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = toInvoiceResponse(&invoices[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if inv.UserID != middleware.UserID(c) {
		fail(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) UpdateInvoice(c *gin.Context) {
	uid := middleware.UserID(c)
	id := c.Param("id")

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ClientID == "" {
		badRequest(c, "client required")
		return
	}
	if req.Amount < 0 {
		badRequest(c, "amount cannot be negative")
		return
	}
	if !validInvoiceStatus(req.Status) {
		badRequest(c, "invalid status")
		return
	}
	if !h.validateInvoiceRefs(c, uid, req.ClientID, req.AppointmentID) {
		return
	}

	prev, err := h.store.GetInvoice(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if prev.UserID != uid {
		fail(c, store.ErrNotFound)
		return
	}

	inv := &model.Invoice{
		ID:            id,
		UserID:        uid,
		ClientID:      req.ClientID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Status:        req.Status,
		DueDate:       req.DueDate,
		PaidDate:      paidDateFor(req.Status, prev),
	}
	if err := h.store.UpdateInvoice(c.Request.Context(), inv); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	if err := h.store.DeleteInvoice(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) InvoicePDF(c *gin.Context) {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if inv.UserID != middleware.UserID(c) {
		fail(c, store.ErrNotFound)
		return
	}
	cl, err := h.store.GetClient(c.Request.Context(), inv.ClientID)
	if err != nil {
		fail(c, err)
		return
	}

	doc, err := pdf.InvoiceSummary(inv, cl)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoice-`+inv.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
