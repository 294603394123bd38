package postgres

import (
	"context"

	"github.com/google/uuid"

	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

// DeleteUserCascade removes a user and everything they own in one
// transaction, so a mid-sequence failure cannot leave a half-deleted user.
// Step order mirrors the dependency direction; refresh tokens go with the
// account row. Admin action rows are never touched.
func (s *Store) DeleteUserCascade(ctx context.Context, targetID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	steps := []struct {
		name string
		sql  string
	}{
		{store.StepRoles, `DELETE FROM user_roles WHERE user_id = $1`},
		{store.StepProfile, `DELETE FROM user_profiles WHERE user_id = $1`},
		{store.StepClients, `DELETE FROM clients WHERE user_id = $1`},
		{store.StepServices, `DELETE FROM services WHERE user_id = $1`},
		{store.StepAppointments, `DELETE FROM appointments WHERE user_id = $1`},
		{store.StepInvoices, `DELETE FROM invoices WHERE user_id = $1`},
	}
	for _, st := range steps {
		if _, err := tx.Exec(ctx, st.sql, targetID); err != nil {
			return &store.CascadeError{Step: st.name, Err: mapErr(err)}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, targetID); err != nil {
		return &store.CascadeError{Step: store.StepAccount, Err: mapErr(err)}
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, targetID)
	if err != nil {
		return &store.CascadeError{Step: store.StepAccount, Err: mapErr(err)}
	}
	if tag.RowsAffected() == 0 {
		// already deleted (or never existed) — surfaced, not swallowed
		return &store.CascadeError{Step: store.StepAccount, Err: store.ErrNotFound}
	}

	return tx.Commit(ctx)
}

func (s *Store) AppendAdminAction(ctx context.Context, a *model.AdminAction) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admin_actions (id, admin_id, action, target_user_id, notes)
		 VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.AdminID, a.Action, a.TargetUserID, a.Notes,
	)
	return mapErr(err)
}

func (s *Store) ListAdminActions(ctx context.Context) ([]model.AdminAction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, admin_id, action, target_user_id, notes, created_at
		 FROM admin_actions ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []model.AdminAction
	for rows.Next() {
		var a model.AdminAction
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.TargetUserID, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
