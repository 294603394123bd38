package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

const invoiceCols = `id, user_id, client_id, appointment_id, amount, status, due_date, paid_date, created_at, updated_at`

func (s *Store) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invoices (id, user_id, client_id, appointment_id, amount, status, due_date, paid_date)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		inv.ID, inv.UserID, inv.ClientID, nullStr(inv.AppointmentID),
		inv.Amount, inv.Status, inv.DueDate, inv.PaidDate,
	)
	return mapErr(err)
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	inv := &model.Invoice{}
	var apptID sql.NullString
	err := s.pool.QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.UserID, &inv.ClientID, &apptID, &inv.Amount, &inv.Status,
		&inv.DueDate, &inv.PaidDate, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	inv.AppointmentID = apptID.String
	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, ownerID string) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanInvoices(rows)
}

func (s *Store) ListAllInvoices(ctx context.Context) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invoiceCols+` FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanInvoices(rows)
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *model.Invoice) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invoices
		 SET client_id=$1, appointment_id=$2, amount=$3, status=$4, due_date=$5, paid_date=$6, updated_at=NOW()
		 WHERE id=$7 AND user_id=$8`,
		inv.ClientID, nullStr(inv.AppointmentID), inv.Amount, inv.Status,
		inv.DueDate, inv.PaidDate, inv.ID, inv.UserID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanInvoices(rows pgx.Rows) ([]model.Invoice, error) {
	defer rows.Close()
	var out []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		var apptID sql.NullString
		if err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.ClientID, &apptID, &inv.Amount, &inv.Status,
			&inv.DueDate, &inv.PaidDate, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inv.AppointmentID = apptID.String
		out = append(out, inv)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
