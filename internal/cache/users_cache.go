package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const usersDirectoryKey = "users:directory:v1"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Directory caches the full user listing in redis. A nil *Directory is
// valid and means "no cache": every method degrades to a miss/no-op,
// so callers never branch on whether redis is configured.
type Directory struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg Config) *Directory {
	if cfg.Addr == "" {
		return nil
	}

	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Directory{rdb: rdb, ttl: cfg.TTL}
}

// this ping function checks redis connectivity
func (d *Directory) Ping(ctx context.Context) error {
	if d == nil {
		return nil
	}
	return d.rdb.Ping(ctx).Err()
}

func (d *Directory) Close() error {
	if d == nil {
		return nil
	}
	return d.rdb.Close()
}

func (d *Directory) GetUsers(ctx context.Context) ([]user.User, bool) {
	if d == nil {
		return nil, false
	}

	raw, err := d.rdb.Get(ctx, usersDirectoryKey).Bytes()

	if err != nil {
		// redis.Nil and transport errors are both just a miss
		return nil, false
	}

	var out []user.User

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}

	return out, true
}

func (d *Directory) SetUsers(ctx context.Context, users []user.User) {
	if d == nil {
		return
	}

	raw, err := json.Marshal(users)

	if err != nil {
		return
	}

	// cache population is best effort
	d.rdb.Set(ctx, usersDirectoryKey, raw, d.ttl)
}

// InvalidateUsers drops the listing after any user mutation so reads
// never serve a stale directory past the next request.
func (d *Directory) InvalidateUsers(ctx context.Context) {
	if d == nil {
		return
	}

	d.rdb.Del(ctx, usersDirectoryKey)
}
