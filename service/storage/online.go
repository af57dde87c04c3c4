package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"marketchat/tools/errs"
)

const (
	onlineHashKey   = "presence:online"   // user id -> conn id
	lastSeenKeyPref = "presence:lastseen:" // per-user last seen, unix ms
)

// OnlineStore mirrors the gateway's in-memory presence into redis so
// sibling services (REST API, admin) can read online badges without asking
// the gateway. The gateway never reads it back; the local registry stays
// the single source of truth for dispatch.
type OnlineStore struct {
	rdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func NewOnlineStore(c Config) (*OnlineStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errs.Wrap(err, "redis ping")
	}
	return &OnlineStore{rdb: rdb}, nil
}

func (s *OnlineStore) SetOnline(ctx context.Context, userID, connID string) error {
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, onlineHashKey, userID, connID)
	pipe.Set(ctx, lastSeenKeyPref+userID, time.Now().UnixMilli(), 0)
	_, err := pipe.Exec(ctx)
	return errs.Wrapf(err, "mirror online user=%s", userID)
}

func (s *OnlineStore) SetOffline(ctx context.Context, userID string) error {
	pipe := s.rdb.Pipeline()
	pipe.HDel(ctx, onlineHashKey, userID)
	pipe.Set(ctx, lastSeenKeyPref+userID, time.Now().UnixMilli(), 0)
	_, err := pipe.Exec(ctx)
	return errs.Wrapf(err, "mirror offline user=%s", userID)
}

// IsOnline is for sibling-service style reads and tooling; the gateway
// itself decides from its registry.
func (s *OnlineStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.rdb.HExists(ctx, onlineHashKey, userID).Result()
	if err != nil {
		return false, errs.Wrapf(err, "read online user=%s", userID)
	}
	return n, nil
}

func (s *OnlineStore) Close() error {
	return s.rdb.Close()
}
