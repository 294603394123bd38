// Package store defines the persistence contract consumed by the handlers.
// Two implementations exist: postgres (production) and memory (tests).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice-api/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	// ErrConflict is returned when an insert or update would overlap an
	// existing appointment for the same owner.
	ErrConflict = errors.New("time conflicts with existing appointment")
	// ErrReferenced is returned when a delete would orphan rows that still
	// point at the target.
	ErrReferenced = errors.New("still referenced by other records")
)

// Cascade step names, in execution order.
const (
	StepRoles        = "roles"
	StepProfile      = "profile"
	StepClients      = "clients"
	StepServices     = "services"
	StepAppointments = "appointments"
	StepInvoices     = "invoices"
	StepAccount      = "account"
)

// CascadeError reports which step of a cascading user deletion failed.
type CascadeError struct {
	Step string
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("delete user: step %s: %v", e.Step, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

type Store interface {
	// users and sessions
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpsertProfile(ctx context.Context, p *model.Profile) error
	ProfileByUser(ctx context.Context, userID string) (*model.Profile, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error

	// roles
	RolesForUser(ctx context.Context, userID string) ([]string, error)
	UpsertRole(ctx context.Context, userID, role string) (created bool, err error)

	// appointments
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error)
	ListAllAppointments(ctx context.Context) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id, ownerID string) error
	HasOverlap(ctx context.Context, ownerID string, start, end time.Time, excludeID string) (bool, error)

	// clients
	CreateClient(ctx context.Context, c *model.Client) error
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, ownerID string) ([]model.Client, error)
	ListAllClients(ctx context.Context) ([]model.ClientWithOwner, error)
	UpdateClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, id, ownerID string) error
	TouchClient(ctx context.Context, id string, at time.Time) error

	// services
	CreateService(ctx context.Context, s *model.Service) error
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context, ownerID string) ([]model.Service, error)
	ListAllServices(ctx context.Context) ([]model.Service, error)
	UpdateService(ctx context.Context, s *model.Service) error
	DeleteService(ctx context.Context, id, ownerID string) error

	// invoices
	CreateInvoice(ctx context.Context, inv *model.Invoice) error
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, ownerID string) ([]model.Invoice, error)
	ListAllInvoices(ctx context.Context) ([]model.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *model.Invoice) error
	DeleteInvoice(ctx context.Context, id, ownerID string) error

	// admin
	DeleteUserCascade(ctx context.Context, targetID string) error
	AppendAdminAction(ctx context.Context, a *model.AdminAction) error
	ListAdminActions(ctx context.Context) ([]model.AdminAction, error)
}
