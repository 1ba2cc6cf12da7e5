package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStoreConfig configures a RedisStore.
type RedisStoreConfig struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	KeyPrefix string

	// LockTTL bounds how long the advisory lock survives without renewal,
	// so a crashed holder does not wedge the job forever. Zero uses a
	// 30 second default.
	LockTTL time.Duration
}

// RedisStore is a Redis-backed Store, suitable for sharing a checkpoint
// across a fleet rather than a single machine's disk.
type RedisStore struct {
	client  *redis.Client
	jobID   string
	dataKey string
	lockKey string
	token   string
	lockTTL time.Duration
	stop    chan struct{}
}

// OpenRedisStore connects to Redis and acquires the advisory lock for jobID.
func OpenRedisStore(ctx context.Context, jobID string, cfg RedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("checkpoint: connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "brigade:"
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	s := &RedisStore{
		client:  client,
		jobID:   jobID,
		dataKey: prefix + "checkpoint:" + jobID,
		lockKey: prefix + "lock:" + jobID,
		token:   uuid.NewString(),
		lockTTL: lockTTL,
		stop:    make(chan struct{}),
	}

	ok, err := client.SetNX(ctx, s.lockKey, s.token, lockTTL).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("checkpoint: acquire redis lock: %w", err)
	}
	if !ok {
		client.Close()
		return nil, ErrLocked
	}

	go s.renewLock()
	return s, nil
}

// renewLock extends the lock TTL at half the TTL interval until Close.
func (s *RedisStore) renewLock() {
	ticker := time.NewTicker(s.lockTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.client.Expire(ctx, s.lockKey, s.lockTTL)
			cancel()
		}
	}
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (*Checkpoint, error) {
	data, err := s.client.Get(ctx, s.dataKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: redis get: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint: parse redis payload: %w", err)
	}
	return &cp, nil
}

// Save implements Store. A single SET overwrites the prior blob; Redis
// guarantees readers never see a partial value mid-write.
func (s *RedisStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.dataKey, data, 0).Err(); err != nil {
		return fmt.Errorf("checkpoint: redis set: %w", err)
	}
	return nil
}

// Close stops lock renewal, releases the lock if still held by this
// instance's token, and closes the client connection.
func (s *RedisStore) Close() error {
	select {
	case <-s.stop:
		return nil
	default:
		close(s.stop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`
	s.client.Eval(ctx, releaseScript, []string{s.lockKey}, s.token)

	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
