package postgres

import "context"

func (s *Store) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRole updates an existing role row in place or inserts the first one.
// Reports whether a new row was created, so callers can distinguish
// assign_role from update_role in the audit trail.
func (s *Store) UpsertRole(ctx context.Context, userID, role string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE user_roles SET role = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, role,
	)
	if err != nil {
		return false, mapErr(err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1,$2)`,
		userID, role,
	)
	return true, mapErr(err)
}
