package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/intervue/internal/domain/user"
)

// UsersRepo is an in-memory mirror of the postgres repo, used by
// handler tests and local dev without a database. The single mutex
// gives the same no-duplicate guarantee the atomic SQL upsert does.
type UsersRepo struct {
	mu    sync.Mutex
	users map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) Upsert(ctx context.Context, req user.SyncRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[req.ExternalID]

	if ok {
		// profile refresh only, role survives resyncs
		existing.Email = req.Email
		existing.Name = req.Name
		existing.Image = req.Image
		existing.UpdatedAt = time.Now().UTC()
		r.users[req.ExternalID] = existing

		return existing, nil
	}

	u := user.NewFromSyncRequest(req)
	r.users[req.ExternalID] = u

	return u, nil
}

func (r *UsersRepo) GetByExternalID(ctx context.Context, externalID string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[externalID]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]user.User, 0, len(r.users))

	for _, u := range r.users {
		out = append(out, u)
	}

	// insertion order approximated by creation time
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ExternalID < out[j].ExternalID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, externalID string, role user.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[externalID]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.users[externalID] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, externalID)

	return nil
}
