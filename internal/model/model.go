package model

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is optional contact detail attached to a user. Not every account
// has one, so lookups must tolerate absence.
type Profile struct {
	UserID    string
	Phone     string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID        string
	UserID    string
	ClientID  string
	ServiceID string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Client struct {
	ID                string
	UserID            string
	Name              string
	Email             string
	Phone             string
	Notes             string
	LastInteractionAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClientWithOwner is a client annotated with its owner's email, returned
// only on the admin-wide listing path.
type ClientWithOwner struct {
	Client
	OwnerEmail string
}

type Service struct {
	ID              string
	UserID          string
	Name            string
	DurationMinutes int
	Price           float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
	InvoiceOverdue   = "overdue"
)

type Invoice struct {
	ID            string
	UserID        string
	ClientID      string
	AppointmentID string
	Amount        float64
	Status        string
	DueDate       *time.Time
	PaidDate      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	ActionUpdateRole = "update_role"
	ActionAssignRole = "assign_role"
	ActionDeleteUser = "delete_user"
)

// AdminAction is an append-only audit row. Never mutated, never deleted.
type AdminAction struct {
	ID           string
	AdminID      string
	Action       string
	TargetUserID string
	Notes        string
	CreatedAt    time.Time
}
