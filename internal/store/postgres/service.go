package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"backoffice-api/internal/model"
	"backoffice-api/internal/store"
)

const serviceCols = `id, user_id, name, duration_minutes, price, created_at, updated_at`

func (s *Store) CreateService(ctx context.Context, svc *model.Service) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO services (id, user_id, name, duration_minutes, price)
		 VALUES ($1,$2,$3,$4,$5)`,
		svc.ID, svc.UserID, svc.Name, svc.DurationMinutes, svc.Price,
	)
	return mapErr(err)
}

func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	svc := &model.Service{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = $1`, id,
	).Scan(&svc.ID, &svc.UserID, &svc.Name, &svc.DurationMinutes, &svc.Price,
		&svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context, ownerID string) ([]model.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+serviceCols+` FROM services WHERE user_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanServices(rows)
}

func (s *Store) ListAllServices(ctx context.Context) ([]model.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+serviceCols+` FROM services ORDER BY name`)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanServices(rows)
}

func (s *Store) UpdateService(ctx context.Context, svc *model.Service) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE services
		 SET name=$1, duration_minutes=$2, price=$3, updated_at=NOW()
		 WHERE id=$4 AND user_id=$5`,
		svc.Name, svc.DurationMinutes, svc.Price, svc.ID, svc.UserID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM services WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanServices(rows pgx.Rows) ([]model.Service, error) {
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(
			&svc.ID, &svc.UserID, &svc.Name, &svc.DurationMinutes, &svc.Price,
			&svc.CreatedAt, &svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}
