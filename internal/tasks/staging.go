package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/hotelops-backend/pkg/config"
	"github.com/angelmondragon/hotelops-backend/pkg/redis"
)

// StagedItem is one consumption declared against a pending task and not yet
// debited.
type StagedItem struct {
	ItemID   uint      `json:"item_id"`
	Quantity int       `json:"quantity"`
	StagedAt time.Time `json:"staged_at"`
}

// Staging holds staged consumptions per task until the task is closed.
type Staging interface {
	Append(ctx context.Context, taskID uint, item StagedItem) error
	List(ctx context.Context, taskID uint) ([]StagedItem, error)
	// Drop removes the oldest count items of the task's list.
	Drop(ctx context.Context, taskID uint, count int) error
}

// NewStaging selects the staging backend named by cfg. The redis backend
// requires store.
func NewStaging(cfg config.TasksConfig, store redis.ListStore) (Staging, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StagingBackend)) {
	case "", config.StagingBackendMemory:
		return NewMemoryStaging(), nil
	case config.StagingBackendRedis:
		if store == nil {
			return nil, fmt.Errorf("redis staging requires a redis client")
		}
		return NewRedisStaging(store, cfg.StagingTTL), nil
	default:
		return nil, fmt.Errorf("unknown staging backend %q", cfg.StagingBackend)
	}
}

// MemoryStaging keeps staged items in process memory.
type MemoryStaging struct {
	mu    sync.Mutex
	items map[uint][]StagedItem
}

func NewMemoryStaging() *MemoryStaging {
	return &MemoryStaging{items: make(map[uint][]StagedItem)}
}

func (m *MemoryStaging) Append(_ context.Context, taskID uint, item StagedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[taskID] = append(m.items[taskID], item)
	return nil
}

func (m *MemoryStaging) List(_ context.Context, taskID uint) ([]StagedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := m.items[taskID]
	out := make([]StagedItem, len(staged))
	copy(out, staged)
	return out, nil
}

func (m *MemoryStaging) Drop(_ context.Context, taskID uint, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := m.items[taskID]
	if count >= len(staged) {
		delete(m.items, taskID)
		return nil
	}
	m.items[taskID] = append([]StagedItem(nil), staged[count:]...)
	return nil
}

// RedisStaging keeps one JSON-encoded list per task so staged items survive
// restarts and are shared between API replicas.
type RedisStaging struct {
	store redis.ListStore
	ttl   time.Duration
}

func NewRedisStaging(store redis.ListStore, ttl time.Duration) *RedisStaging {
	return &RedisStaging{store: store, ttl: ttl}
}

func (r *RedisStaging) Append(ctx context.Context, taskID uint, item StagedItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.store.Append(ctx, r.store.StagingKey(taskID), string(payload), r.ttl)
}

func (r *RedisStaging) List(ctx context.Context, taskID uint) ([]StagedItem, error) {
	raw, err := r.store.Range(ctx, r.store.StagingKey(taskID))
	if err != nil {
		return nil, err
	}
	items := make([]StagedItem, 0, len(raw))
	for _, entry := range raw {
		var item StagedItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("decode staged item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *RedisStaging) Drop(ctx context.Context, taskID uint, count int) error {
	return r.store.TrimFront(ctx, r.store.StagingKey(taskID), int64(count))
}
