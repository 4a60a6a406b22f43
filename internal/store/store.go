package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/model"
)

// ErrNotFound is returned when no asteroid exists under the given ID.
var ErrNotFound = errors.New("asteroid not found")

// AsteroidStore persists user-defined asteroids across restarts. The built-in
// catalog entries live in kb.Catalog; this store only holds custom ones
// created through the API.
type AsteroidStore interface {
	Save(ctx context.Context, a model.Asteroid) error
	Get(ctx context.Context, id string) (model.Asteroid, error)
	List(ctx context.Context) ([]model.Asteroid, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config holds redis connection settings.
type Config struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

// Connect opens the redis-backed store, or falls back to the in-memory store
// when redis is disabled or unreachable. The fallback keeps a single-node dev
// setup working without a running redis.
func Connect(ctx context.Context, cfg Config, log logging.Logger) AsteroidStore {
	if log == nil {
		log = logging.Noop()
	}

	if !cfg.Enabled {
		log.Info(ctx, "redis disabled, using in-memory asteroid store")
		return NewMemoryStore()
	}

	var rdb *redis.Client
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			log.Warn(ctx, "bad redis url, using in-memory asteroid store", logging.String("error", err.Error()))
			return NewMemoryStore()
		}
		rdb = redis.NewClient(opts)
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable, using in-memory asteroid store", logging.String("error", err.Error()))
		_ = rdb.Close()
		return NewMemoryStore()
	}

	log.Info(ctx, "redis asteroid store connected", logging.String("addr", rdb.Options().Addr))
	return &RedisStore{rdb: rdb}
}

const (
	asteroidKeyPrefix = "asteroid:"
	asteroidIndexKey  = "asteroids"
)

// RedisStore keeps each asteroid as a JSON blob under asteroid:<id> with a
// set index for listing.
type RedisStore struct {
	rdb *redis.Client
}

func (s *RedisStore) Save(ctx context.Context, a model.Asteroid) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal asteroid %s: %w", a.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, asteroidKeyPrefix+a.ID, raw, 0)
	pipe.SAdd(ctx, asteroidIndexKey, a.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save asteroid %s: %w", a.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (model.Asteroid, error) {
	raw, err := s.rdb.Get(ctx, asteroidKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Asteroid{}, ErrNotFound
	}
	if err != nil {
		return model.Asteroid{}, fmt.Errorf("get asteroid %s: %w", id, err)
	}

	var a model.Asteroid
	if err := json.Unmarshal(raw, &a); err != nil {
		return model.Asteroid{}, fmt.Errorf("decode asteroid %s: %w", id, err)
	}
	return a, nil
}

func (s *RedisStore) List(ctx context.Context) ([]model.Asteroid, error) {
	ids, err := s.rdb.SMembers(ctx, asteroidIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list asteroids: %w", err)
	}
	sort.Strings(ids)

	asteroids := make([]model.Asteroid, 0, len(ids))
	for _, id := range ids {
		a, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Index entry without a blob; skip the stale ID.
			continue
		}
		if err != nil {
			return nil, err
		}
		asteroids = append(asteroids, a)
	}
	return asteroids, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.rdb.Del(ctx, asteroidKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete asteroid %s: %w", id, err)
	}
	if err := s.rdb.SRem(ctx, asteroidIndexKey, id).Err(); err != nil {
		return fmt.Errorf("deindex asteroid %s: %w", id, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

// MemoryStore is the process-local fallback.
type MemoryStore struct {
	mu        sync.RWMutex
	asteroids map[string]model.Asteroid
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{asteroids: make(map[string]model.Asteroid)}
}

func (s *MemoryStore) Save(_ context.Context, a model.Asteroid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asteroids[a.ID] = a
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Asteroid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.asteroids[id]
	if !ok {
		return model.Asteroid{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Asteroid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asteroids := make([]model.Asteroid, 0, len(s.asteroids))
	for _, a := range s.asteroids {
		asteroids = append(asteroids, a)
	}
	sort.Slice(asteroids, func(i, j int) bool { return asteroids[i].ID < asteroids[j].ID })
	return asteroids, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.asteroids[id]; !ok {
		return ErrNotFound
	}
	delete(s.asteroids, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
