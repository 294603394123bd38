package postgres

import (
	"context"

	"backoffice-api/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name) VALUES ($1,$2,$3,$4)`,
		u.ID, u.Email, u.PasswordHash, u.Name,
	)
	return mapErr(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *model.Profile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, phone, company)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (user_id)
		 DO UPDATE SET phone = EXCLUDED.phone, company = EXCLUDED.company, updated_at = NOW()`,
		p.UserID, p.Phone, p.Company,
	)
	return mapErr(err)
}

func (s *Store) ProfileByUser(ctx context.Context, userID string) (*model.Profile, error) {
	p := &model.Profile{}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, phone, company, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Phone, &p.Company, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}
