package postgres

import (
	"context"
	"time"

	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

const clientCols = `id, user_id, name, email, phone, notes, last_interaction_at, created_at, updated_at`

func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clients (id, user_id, name, email, phone, notes, last_interaction_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Notes, c.LastInteractionAt,
	)
	return mapErr(err)
}

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	c := &model.Client{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+clientCols+` FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes,
		&c.LastInteractionAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context, ownerID string) ([]model.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientCols+` FROM clients WHERE user_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes,
			&c.LastInteractionAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAllClients is the admin-wide read path: every owner's clients, each
// annotated with the owner's email for display.
func (s *Store) ListAllClients(ctx context.Context) ([]model.ClientWithOwner, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.user_id, c.name, c.email, c.phone, c.notes,
		        c.last_interaction_at, c.created_at, c.updated_at, u.email
		 FROM clients c
		 JOIN users u ON u.id = c.user_id
		 ORDER BY c.name`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []model.ClientWithOwner
	for rows.Next() {
		var c model.ClientWithOwner
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes,
			&c.LastInteractionAt, &c.CreatedAt, &c.UpdatedAt, &c.OwnerEmail,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients
		 SET name=$1, email=$2, phone=$3, notes=$4, last_interaction_at=$5, updated_at=NOW()
		 WHERE id=$6 AND user_id=$7`,
		c.Name, c.Email, c.Phone, c.Notes, c.LastInteractionAt, c.ID, c.UserID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) TouchClient(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients SET last_interaction_at = $2 WHERE id = $1`, id, at)
	return mapErr(err)
}
