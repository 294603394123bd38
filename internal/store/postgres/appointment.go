package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

const appointmentCols = `id, user_id, client_id, service_id, start_time, end_time, status, notes, created_at, updated_at`

// CreateAppointment re-checks overlap inside the transaction; the exclusion
// constraint on (user_id, tsrange) is the last line of defense against
// concurrent writers.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE user_id = $1 AND start_time < $3 AND end_time > $2)`,
		a.UserID, a.StartTime, a.EndTime,
	).Scan(&exists)
	if err != nil {
		return mapErr(err)
	}
	if exists {
		return store.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO appointments (id, user_id, client_id, service_id, start_time, end_time, status, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.ClientID, a.ServiceID, a.StartTime, a.EndTime, a.Status, a.Notes,
	)
	if err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

func (s *Store) HasOverlap(ctx context.Context, ownerID string, start, end time.Time, excludeID string) (bool, error) {
	// No status filter: cancelled appointments are kept in the conflict set.
	q := `SELECT EXISTS(
		SELECT 1 FROM appointments
		WHERE user_id = $1
		  AND start_time < $3
		  AND end_time > $2`

	args := []any{ownerID, start, end}

	if excludeID != "" {
		q += ` AND id != $4`
		args = append(args, excludeID)
	}
	q += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, mapErr(err)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.ClientID, &a.ServiceID, &a.StartTime, &a.EndTime,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE user_id = $1 ORDER BY start_time`, ownerID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanAppointments(rows)
}

func (s *Store) ListAllAppointments(ctx context.Context) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments ORDER BY start_time`)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanAppointments(rows)
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE user_id = $1 AND start_time < $3 AND end_time > $2 AND id != $4)`,
		a.UserID, a.StartTime, a.EndTime, a.ID,
	).Scan(&exists)
	if err != nil {
		return mapErr(err)
	}
	if exists {
		return store.ErrConflict
	}

	tag, err := tx.Exec(ctx,
		`UPDATE appointments
		 SET client_id=$1, service_id=$2, start_time=$3, end_time=$4, status=$5, notes=$6, updated_at=NOW()
		 WHERE id=$7 AND user_id=$8`,
		a.ClientID, a.ServiceID, a.StartTime, a.EndTime, a.Status, a.Notes, a.ID, a.UserID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteAppointment(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ClientID, &a.ServiceID, &a.StartTime, &a.EndTime,
			&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
