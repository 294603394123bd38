package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backoffice-api/internal/config"
	"backoffice-api/internal/handler"
	"backoffice-api/internal/model"
	"backoffice-api/internal/roles"
	"backoffice-api/internal/store/memory"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.RefreshTokenTTL = time.Hour
	cfg.Auth.AuthRatePerSecond = 1000
	cfg.Auth.AuthRateBurst = 1000
	cfg.Metrics.Prefix = "test"
	cfg.CORS.AllowedOrigins = []string{"http://localhost"}

	st := memory.New()
	return handler.NewRouter(cfg, st, zap.NewNop()), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
}

// registerUser creates an account and returns its id and access token.
func registerUser(t *testing.T, r *gin.Engine, email string) (id, token string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "password": "password123", "name": "Test User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	decode(t, w, &resp)
	return resp.UserID, resp.Token
}

func makeAdmin(t *testing.T, st *memory.Store, userID string) {
	t.Helper()
	if _, err := st.UpsertRole(context.Background(), userID, roles.Admin); err != nil {
		t.Fatal(err)
	}
}

// createClientService seeds one client and one service for the owner.
func createClientService(t *testing.T, r *gin.Engine, token string) (clientID, serviceID string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/clients", token, gin.H{"name": "Acme"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", w.Code, w.Body.String())
	}
	var cl struct {
		ID string `json:"id"`
	}
	decode(t, w, &cl)

	w = doJSON(t, r, http.MethodPost, "/api/services", token, gin.H{
		"name": "Consult", "durationMinutes": 60, "price": 80.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create service: %d %s", w.Code, w.Body.String())
	}
	var svc struct {
		ID string `json:"id"`
	}
	decode(t, w, &svc)
	return cl.ID, svc.ID
}

func slot(h int) (string, string) {
	day := time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
	return day.Format(time.RFC3339), day.Add(time.Hour).Format(time.RFC3339)
}

func createAppointment(t *testing.T, r *gin.Engine, token, clientID, serviceID string, hour int) string {
	t.Helper()
	start, end := slot(hour)
	w := doJSON(t, r, http.MethodPost, "/api/appointments", token, gin.H{
		"clientId": clientID, "serviceId": serviceID,
		"startTime": start, "endTime": end,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create appointment: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing email", gin.H{"password": "password123", "name": "A"}, http.StatusBadRequest},
		{"short password", gin.H{"email": "a@b.c", "password": "short", "name": "A"}, http.StatusBadRequest},
		{"missing name", gin.H{"email": "a@b.c", "password": "password123"}, http.StatusBadRequest},
		{"ok", gin.H{"email": "a@b.c", "password": "password123", "name": "A"}, http.StatusCreated},
		{"duplicate email", gin.H{"email": "a@b.c", "password": "password123", "name": "A"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodPost, "/auth/register", "", tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	r, _ := newTestServer(t)
	id, _ := registerUser(t, r, "me@example.com")

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "me@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	decode(t, w, &login)
	if login.UserID != id {
		t.Errorf("userId = %q, want %q", login.UserID, id)
	}

	w = doJSON(t, r, http.MethodGet, "/api/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var me struct {
		Roles []string `json:"roles"`
	}
	decode(t, w, &me)
	if len(me.Roles) != 1 || me.Roles[0] != roles.User {
		t.Errorf("roles = %v, want [user]", me.Roles)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "u@example.com")

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "u@example.com", "password": "not-the-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t)
	if w := doJSON(t, r, http.MethodGet, "/api/appointments", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/appointments", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestAppointmentConflicts(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, serviceID := createClientService(t, r, token)

	createAppointment(t, r, token, clientID, serviceID, 9) // 09:00-10:00

	// overlapping slot rejected
	start, end := slot(9)
	w := doJSON(t, r, http.MethodPost, "/api/appointments", token, gin.H{
		"clientId": clientID, "serviceId": serviceID,
		"startTime": start, "endTime": end,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("overlap status = %d, want 409 (%s)", w.Code, w.Body.String())
	}

	// back-to-back slot allowed: [9,10) then [10,11)
	createAppointment(t, r, token, clientID, serviceID, 10)

	// another owner may book the same time
	_, other := registerUser(t, r, "other@example.com")
	oc, os := createClientService(t, r, other)
	createAppointment(t, r, other, oc, os, 9)
}

func TestAppointmentEditExcludesSelf(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, serviceID := createClientService(t, r, token)

	id := createAppointment(t, r, token, clientID, serviceID, 9)
	createAppointment(t, r, token, clientID, serviceID, 11)

	// extending within its own slot is fine
	start, _ := slot(9)
	end := time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC).Format(time.RFC3339)
	w := doJSON(t, r, http.MethodPut, "/api/appointments/"+id, token, gin.H{
		"clientId": clientID, "serviceId": serviceID,
		"startTime": start, "endTime": end, "status": model.AppointmentConfirmed,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("self-overlap edit: %d %s", w.Code, w.Body.String())
	}

	// but colliding with the 11:00 appointment is not
	end = time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC).Format(time.RFC3339)
	w = doJSON(t, r, http.MethodPut, "/api/appointments/"+id, token, gin.H{
		"clientId": clientID, "serviceId": serviceID,
		"startTime": start, "endTime": end, "status": model.AppointmentConfirmed,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("collision edit status = %d, want 409", w.Code)
	}
}

func TestAppointmentInvalidInterval(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, serviceID := createClientService(t, r, token)

	start, _ := slot(9)
	w := doJSON(t, r, http.MethodPost, "/api/appointments", token, gin.H{
		"clientId": clientID, "serviceId": serviceID,
		"startTime": start, "endTime": start,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero-length status = %d, want 400", w.Code)
	}
}

func TestAppointmentForeignRefsRejected(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "a@example.com")
	_, other := registerUser(t, r, "b@example.com")
	foreignClient, foreignService := createClientService(t, r, other)

	start, end := slot(9)
	w := doJSON(t, r, http.MethodPost, "/api/appointments", token, gin.H{
		"clientId": foreignClient, "serviceId": foreignService,
		"startTime": start, "endTime": end,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("foreign refs status = %d, want 400", w.Code)
	}
}

func TestOwnershipHiddenAs404(t *testing.T) {
	r, _ := newTestServer(t)
	_, owner := registerUser(t, r, "owner@example.com")
	clientID, serviceID := createClientService(t, r, owner)
	aptID := createAppointment(t, r, owner, clientID, serviceID, 9)

	_, intruder := registerUser(t, r, "intruder@example.com")

	paths := []string{
		"/api/appointments/" + aptID,
		"/api/clients/" + clientID,
		"/api/services/" + serviceID,
	}
	for _, p := range paths {
		if w := doJSON(t, r, http.MethodGet, p, intruder, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", p, w.Code)
		}
		if w := doJSON(t, r, http.MethodDelete, p, intruder, nil); w.Code != http.StatusNotFound {
			t.Errorf("DELETE %s status = %d, want 404", p, w.Code)
		}
	}
}

func TestAdminWideListing(t *testing.T) {
	r, st := newTestServer(t)
	adminID, adminTok := registerUser(t, r, "admin@example.com")
	makeAdmin(t, st, adminID)
	_, userTok := registerUser(t, r, "user@example.com")
	createClientService(t, r, userTok)

	// non-admin denied the wide view
	if w := doJSON(t, r, http.MethodGet, "/api/clients?all=true", userTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-admin wide list status = %d, want 403", w.Code)
	}

	// admin sees other owners' rows, annotated with the owner email
	w := doJSON(t, r, http.MethodGet, "/api/clients?all=true", adminTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin wide list: %d %s", w.Code, w.Body.String())
	}
	var clients []struct {
		Name       string `json:"name"`
		OwnerEmail string `json:"ownerEmail"`
	}
	decode(t, w, &clients)
	if len(clients) != 1 || clients[0].OwnerEmail != "user@example.com" {
		t.Errorf("wide clients = %+v, want one row owned by user@example.com", clients)
	}

	// own-scope list stays empty for the admin
	w = doJSON(t, r, http.MethodGet, "/api/clients", adminTok, nil)
	var own []json.RawMessage
	decode(t, w, &own)
	if len(own) != 0 {
		t.Errorf("admin own-scope list has %d rows, want 0", len(own))
	}

	// widening applies to the other entity lists too
	for _, p := range []string{"/api/appointments?all=true", "/api/services?all=true", "/api/invoices?all=true"} {
		if w := doJSON(t, r, http.MethodGet, p, userTok, nil); w.Code != http.StatusForbidden {
			t.Errorf("non-admin %s status = %d, want 403", p, w.Code)
		}
		if w := doJSON(t, r, http.MethodGet, p, adminTok, nil); w.Code != http.StatusOK {
			t.Errorf("admin %s status = %d, want 200", p, w.Code)
		}
	}
}

func TestAdminCannotMutateForeignRows(t *testing.T) {
	r, st := newTestServer(t)
	adminID, adminTok := registerUser(t, r, "admin@example.com")
	makeAdmin(t, st, adminID)
	_, userTok := registerUser(t, r, "user@example.com")
	clientID, _ := createClientService(t, r, userTok)

	w := doJSON(t, r, http.MethodPut, "/api/clients/"+clientID, adminTok, gin.H{"name": "Hijacked"})
	if w.Code != http.StatusNotFound {
		t.Errorf("admin foreign update status = %d, want 404", w.Code)
	}
}

func TestInvoicePaidDate(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, _ := createClientService(t, r, token)

	w := doJSON(t, r, http.MethodPost, "/api/invoices", token, gin.H{
		"clientId": clientID, "amount": 120.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create invoice: %d %s", w.Code, w.Body.String())
	}
	var inv struct {
		ID       string     `json:"id"`
		Status   string     `json:"status"`
		PaidDate *time.Time `json:"paidDate"`
	}
	decode(t, w, &inv)
	if inv.Status != model.InvoicePending {
		t.Errorf("default status = %q, want pending", inv.Status)
	}
	if inv.PaidDate != nil {
		t.Error("paidDate set on a pending invoice")
	}

	// marking paid sets paid_date server-side
	w = doJSON(t, r, http.MethodPut, "/api/invoices/"+inv.ID, token, gin.H{
		"clientId": clientID, "amount": 120.0, "status": model.InvoicePaid,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("mark paid: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &inv)
	if inv.PaidDate == nil {
		t.Fatal("paidDate not set on transition to paid")
	}

	// reverting clears it
	w = doJSON(t, r, http.MethodPut, "/api/invoices/"+inv.ID, token, gin.H{
		"clientId": clientID, "amount": 120.0, "status": model.InvoicePending,
	})
	decode(t, w, &inv)
	if inv.PaidDate != nil {
		t.Error("paidDate kept after leaving paid status")
	}
}

func TestInvoiceValidation(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, _ := createClientService(t, r, token)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing client", gin.H{"amount": 10.0}},
		{"negative amount", gin.H{"clientId": clientID, "amount": -1.0}},
		{"bad status", gin.H{"clientId": clientID, "amount": 10.0, "status": "weird"}},
		{"unknown appointment", gin.H{"clientId": clientID, "amount": 10.0, "appointmentId": "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodPost, "/api/invoices", token, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestInvoicePDF(t *testing.T) {
	r, _ := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, _ := createClientService(t, r, token)

	w := doJSON(t, r, http.MethodPost, "/api/invoices", token, gin.H{
		"clientId": clientID, "amount": 99.0,
	})
	var inv struct {
		ID string `json:"id"`
	}
	decode(t, w, &inv)

	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+inv.ID+"/pdf", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pdf: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestCascadeDelete(t *testing.T) {
	r, st := newTestServer(t)
	adminID, adminTok := registerUser(t, r, "admin@example.com")
	makeAdmin(t, st, adminID)

	targetID, targetTok := registerUser(t, r, "target@example.com")
	clientID, serviceID := createClientService(t, r, targetTok)
	createAppointment(t, r, targetTok, clientID, serviceID, 9)
	doJSON(t, r, http.MethodPost, "/api/invoices", targetTok, gin.H{"clientId": clientID, "amount": 10.0})

	// non-admin denied
	_, plainTok := registerUser(t, r, "plain@example.com")
	if w := doJSON(t, r, http.MethodDelete, "/api/admin/users/"+targetID, plainTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-admin delete status = %d, want 403", w.Code)
	}

	// self-deletion refused before anything is touched
	if w := doJSON(t, r, http.MethodDelete, "/api/admin/users/"+adminID, adminTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", w.Code)
	}
	if _, err := st.UserByID(context.Background(), adminID); err != nil {
		t.Error("self-delete attempt removed the admin account")
	}
	if _, err := st.GetClient(context.Background(), clientID); err != nil {
		t.Error("self-delete attempt touched unrelated rows")
	}

	w := doJSON(t, r, http.MethodDelete, "/api/admin/users/"+targetID, adminTok, gin.H{"notes": "offboarding"})
	if w.Code != http.StatusOK {
		t.Fatalf("cascade delete: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, w, &resp)
	if !resp.Success || resp.Message == "" {
		t.Errorf("response = %+v", resp)
	}

	// everything owned by the target is gone
	if _, err := st.UserByID(context.Background(), targetID); err == nil {
		t.Error("user row survived the cascade")
	}
	if _, err := st.GetClient(context.Background(), clientID); err == nil {
		t.Error("client row survived the cascade")
	}
	if apts, _ := st.ListAppointments(context.Background(), targetID); len(apts) != 0 {
		t.Error("appointments survived the cascade")
	}
	if invs, _ := st.ListInvoices(context.Background(), targetID); len(invs) != 0 {
		t.Error("invoices survived the cascade")
	}

	// exactly one delete_user audit row, note included
	actions, _ := st.ListAdminActions(context.Background())
	var deletes []model.AdminAction
	for _, a := range actions {
		if a.Action == model.ActionDeleteUser {
			deletes = append(deletes, a)
		}
	}
	if len(deletes) != 1 {
		t.Fatalf("delete_user audit rows = %d, want 1", len(deletes))
	}
	if deletes[0].TargetUserID != targetID || deletes[0].AdminID != adminID || deletes[0].Notes != "offboarding" {
		t.Errorf("audit row = %+v", deletes[0])
	}

	// repeating the deletion reports not found
	if w := doJSON(t, r, http.MethodDelete, "/api/admin/users/"+targetID, adminTok, nil); w.Code != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", w.Code)
	}
}

func TestRoleUpdateWorkflow(t *testing.T) {
	r, st := newTestServer(t)
	adminID, adminTok := registerUser(t, r, "admin@example.com")
	makeAdmin(t, st, adminID)
	targetID, _ := registerUser(t, r, "target@example.com")

	// first grant records assign_role
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", targetID), adminTok, gin.H{"role": roles.Admin})
	if w.Code != http.StatusOK {
		t.Fatalf("assign role: %d %s", w.Code, w.Body.String())
	}

	// second change records update_role
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", targetID), adminTok, gin.H{"role": roles.User})
	if w.Code != http.StatusOK {
		t.Fatalf("update role: %d %s", w.Code, w.Body.String())
	}

	actions, _ := st.ListAdminActions(context.Background())
	var kinds []string
	for _, a := range actions {
		if a.TargetUserID == targetID {
			kinds = append(kinds, a.Action)
		}
	}
	if len(kinds) != 2 || kinds[0] != model.ActionAssignRole || kinds[1] != model.ActionUpdateRole {
		t.Errorf("audit kinds = %v, want [assign_role update_role]", kinds)
	}

	// invalid role label rejected
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", targetID), adminTok, gin.H{"role": "root"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid role status = %d, want 400", w.Code)
	}

	// unknown target rejected
	w = doJSON(t, r, http.MethodPut, "/api/admin/users/nope/role", adminTok, gin.H{"role": roles.User})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown target status = %d, want 404", w.Code)
	}

	// admin may change their own role (no self-demotion guard)
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/admin/users/%s/role", adminID), adminTok, gin.H{"role": roles.User})
	if w.Code != http.StatusOK {
		t.Errorf("self role change status = %d, want 200", w.Code)
	}
}

func TestClientTouchedOnBooking(t *testing.T) {
	r, st := newTestServer(t)
	_, token := registerUser(t, r, "owner@example.com")
	clientID, serviceID := createClientService(t, r, token)

	createAppointment(t, r, token, clientID, serviceID, 9)

	cl, err := st.GetClient(context.Background(), clientID)
	if err != nil {
		t.Fatal(err)
	}
	if cl.LastInteractionAt == nil {
		t.Fatal("last interaction not touched by booking")
	}
	start, _ := slot(9)
	want, _ := time.Parse(time.RFC3339, start)
	if !cl.LastInteractionAt.Equal(want) {
		t.Errorf("last interaction = %v, want %v", cl.LastInteractionAt, want)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "u@example.com")

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "u@example.com", "password": "password123",
	})
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no refresh cookie")
	}

	refresh := func(c *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(c)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := cookies[0]
	rec := refresh(first)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}

	// the old token was revoked by rotation
	if rec := refresh(first); rec.Code != http.StatusUnauthorized {
		t.Errorf("replayed refresh status = %d, want 401", rec.Code)
	}

	// the replacement works
	rotated := rec.Result().Cookies()
	if len(rotated) == 0 {
		t.Fatal("refresh set no replacement cookie")
	}
	if rec := refresh(rotated[0]); rec.Code != http.StatusOK {
		t.Errorf("rotated refresh status = %d, want 200", rec.Code)
	}
}
