// Package memory is an in-memory store used by tests and local development.
// All methods are safe for concurrent use; the mutex makes every operation
// atomic, matching the transactional guarantees of the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice-api/internal/model"
	"backoffice-api/internal/schedule"
	"backoffice-api/internal/store"
)

type Store struct {
	mu sync.Mutex

	users         map[string]model.User
	profiles      map[string]model.Profile // keyed by user id
	refreshTokens map[string]model.RefreshToken
	roles         map[string]string // user id -> role label
	appointments  map[string]model.Appointment
	clients       map[string]model.Client
	services      map[string]model.Service
	invoices      map[string]model.Invoice
	adminActions  []model.AdminAction
}

func New() *Store {
	return &Store{
		users:         map[string]model.User{},
		profiles:      map[string]model.Profile{},
		refreshTokens: map[string]model.RefreshToken{},
		roles:         map[string]string{},
		appointments:  map[string]model.Appointment{},
		clients:       map[string]model.Client{},
		services:      map[string]model.Service{},
		invoices:      map[string]model.Invoice{},
	}
}

var _ store.Store = (*Store)(nil)

// ----- users -----

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.UserID] = *p
	return nil
}

func (s *Store) ProfileByUser(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := p
	return &out, nil
}

// ----- refresh tokens -----

func (s *Store) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.refreshTokens[id] = model.RefreshToken{
		ID: id, UserID: userID, TokenHash: tokenHash,
		ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *Store) RefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.refreshTokens {
		if rt.TokenHash == tokenHash {
			out := rt
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.refreshTokens[oldID]
	if !ok {
		return store.ErrNotFound
	}
	old.Revoked = true
	old.ReplacedBy = &newID
	s.refreshTokens[oldID] = old
	s.refreshTokens[newID] = model.RefreshToken{
		ID: newID, UserID: userID, TokenHash: newHash,
		ExpiresAt: newExpiry, CreatedAt: time.Now(),
	}
	return nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.refreshTokens {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			s.refreshTokens[id] = rt
		}
	}
	return nil
}

// ----- roles -----

func (s *Store) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.roles[userID]; ok {
		return []string{r}, nil
	}
	return nil, nil
}

func (s *Store) UpsertRole(ctx context.Context, userID, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.roles[userID]
	s.roles[userID] = role
	return !existed, nil
}

// ----- appointments -----

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !schedule.Available(s.ownerAppointmentsLocked(a.UserID), a.StartTime, a.EndTime, "") {
		return store.ErrConflict
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) HasOverlap(ctx context.Context, ownerID string, start, end time.Time, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !schedule.Available(s.ownerAppointmentsLocked(ownerID), start, end, excludeID), nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := a
	return &out, nil
}

func (s *Store) ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.ownerAppointmentsLocked(ownerID)
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) ListAllAppointments(ctx context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.appointments[a.ID]
	if !ok || existing.UserID != a.UserID {
		return store.ErrNotFound
	}
	if !schedule.Available(s.ownerAppointmentsLocked(a.UserID), a.StartTime, a.EndTime, a.ID) {
		return store.ErrConflict
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) ownerAppointmentsLocked(ownerID string) []model.Appointment {
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.UserID == ownerID {
			out = append(out, a)
		}
	}
	return out
}

// ----- clients -----

func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Store) ListClients(ctx context.Context, ownerID string) ([]model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Client
	for _, c := range s.clients {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListAllClients(ctx context.Context) ([]model.ClientWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ClientWithOwner
	for _, c := range s.clients {
		owner := s.users[c.UserID]
		out = append(out, model.ClientWithOwner{Client: c, OwnerEmail: owner.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.clients[c.ID]
	if !ok || existing.UserID != c.UserID {
		return store.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) TouchClient(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	c.LastInteractionAt = &at
	s.clients[id] = c
	return nil
}

// ----- services -----

func (s *Store) CreateService(ctx context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := svc
	return &out, nil
}

func (s *Store) ListServices(ctx context.Context, ownerID string) ([]model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Service
	for _, svc := range s.services {
		if svc.UserID == ownerID {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListAllServices(ctx context.Context) ([]model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateService(ctx context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.services[svc.ID]
	if !ok || existing.UserID != svc.UserID {
		return store.ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok || svc.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(s.services, id)
	return nil
}

// ----- invoices -----

func (s *Store) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := inv
	return &out, nil
}

func (s *Store) ListInvoices(ctx context.Context, ownerID string) ([]model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Invoice
	for _, inv := range s.invoices {
		if inv.UserID == ownerID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListAllInvoices(ctx context.Context) ([]model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.invoices[inv.ID]
	if !ok || existing.UserID != inv.UserID {
		return store.ErrNotFound
	}
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now()
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

// ----- admin -----

func (s *Store) DeleteUserCascade(ctx context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Everything happens under one lock, so the cascade is atomic: either
	// the account exists and all owned rows go, or nothing is touched.
	if _, ok := s.users[targetID]; !ok {
		return &store.CascadeError{Step: store.StepAccount, Err: store.ErrNotFound}
	}

	delete(s.roles, targetID)
	delete(s.profiles, targetID) // missing profile is fine
	for id, c := range s.clients {
		if c.UserID == targetID {
			delete(s.clients, id)
		}
	}
	for id, svc := range s.services {
		if svc.UserID == targetID {
			delete(s.services, id)
		}
	}
	for id, a := range s.appointments {
		if a.UserID == targetID {
			delete(s.appointments, id)
		}
	}
	for id, inv := range s.invoices {
		if inv.UserID == targetID {
			delete(s.invoices, id)
		}
	}
	for id, rt := range s.refreshTokens {
		if rt.UserID == targetID {
			delete(s.refreshTokens, id)
		}
	}
	delete(s.users, targetID)
	return nil
}

func (s *Store) AppendAdminAction(ctx context.Context, a *model.AdminAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()
	s.adminActions = append(s.adminActions, *a)
	return nil
}

func (s *Store) ListAdminActions(ctx context.Context) ([]model.AdminAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AdminAction, len(s.adminActions))
	copy(out, s.adminActions)
	return out, nil
}
