package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Upsert is a single atomic statement keyed on external_id, so
// redelivered webhooks can never create a duplicate row. Profile
// fields refresh on conflict; role is set only on first insert.
func (r *UsersRepo) Upsert(ctx context.Context, req user.SyncRequest) (user.User, error) {
	u := user.NewFromSyncRequest(req)

	err := r.observe("users.upsert", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (external_id, email, name, image, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (external_id) DO UPDATE
			 SET email = EXCLUDED.email,
			     name = EXCLUDED.name,
			     image = EXCLUDED.image,
			     updated_at = EXCLUDED.updated_at
			 RETURNING external_id, email, name, image, role, created_at, updated_at`,
			u.ExternalID, u.Email, u.Name, u.Image, u.Role, u.CreatedAt, u.UpdatedAt,
		).Scan(&u.ExternalID, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByExternalID(ctx context.Context, externalID string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_external_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT external_id, email, name, image, role, created_at, updated_at
			 FROM users
			 WHERE external_id = $1`,
			externalID,
		).Scan(&u.ExternalID, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT external_id, email, name, image, role, created_at, updated_at
			 FROM users
			 ORDER BY created_at ASC, external_id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ExternalID, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, externalID string, role user.Role) (user.User, error) {
	var u user.User

	err := r.observe("users.update_role", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
			 SET role = $2, updated_at = now()
			 WHERE external_id = $1
			 RETURNING external_id, email, name, image, role, created_at, updated_at`,
			externalID, role,
		).Scan(&u.ExternalID, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Delete removes the mirror row. Unknown ids are a no-op, matching the
// provider's at-least-once delivery of user.deleted events.
func (r *UsersRepo) Delete(ctx context.Context, externalID string) error {
	return r.observe("users.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)

		return err
	})
}
