package tasks

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hotelops-backend/pkg/config"
)

type fakeListStore struct {
	mu    sync.Mutex
	lists map[string][]string
	ttls  map[string]time.Duration
	err   error
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{lists: map[string][]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeListStore) Append(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.lists[key] = append(f.lists[key], value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeListStore) Range(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.lists[key]...), nil
}

func (f *fakeListStore) TrimFront(_ context.Context, key string, n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	if int(n) >= len(list) {
		delete(f.lists, key)
		return nil
	}
	f.lists[key] = append([]string(nil), list[n:]...)
	return nil
}

func (f *fakeListStore) StagingKey(taskID uint) string {
	return "ho:staging:task:" + strconv.FormatUint(uint64(taskID), 10)
}

func exerciseStaging(t *testing.T, staging Staging) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, staging.Append(ctx, 1, StagedItem{ItemID: 10, Quantity: 2}))
	require.NoError(t, staging.Append(ctx, 1, StagedItem{ItemID: 11, Quantity: 1}))
	require.NoError(t, staging.Append(ctx, 2, StagedItem{ItemID: 10, Quantity: 5}))

	items, err := staging.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(10), items[0].ItemID)
	assert.Equal(t, 1, items[1].Quantity)

	require.NoError(t, staging.Append(ctx, 1, StagedItem{ItemID: 12, Quantity: 4}))
	require.NoError(t, staging.Drop(ctx, 1, 2))
	items, err = staging.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1, "items appended after the snapshot survive")
	assert.Equal(t, uint(12), items[0].ItemID)

	require.NoError(t, staging.Drop(ctx, 1, 5))
	items, err = staging.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = staging.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryStaging(t *testing.T) {
	exerciseStaging(t, NewMemoryStaging())
}

func TestRedisStaging(t *testing.T) {
	store := newFakeListStore()
	exerciseStaging(t, NewRedisStaging(store, time.Hour))
	assert.Equal(t, time.Hour, store.ttls[store.StagingKey(2)])

	store.lists[store.StagingKey(3)] = []string{"{not json"}
	_, err := NewRedisStaging(store, time.Hour).List(context.Background(), 3)
	assert.Error(t, err)

	store.err = errors.New("connection refused")
	assert.Error(t, NewRedisStaging(store, time.Hour).Append(context.Background(), 4, StagedItem{ItemID: 1, Quantity: 1}))
}

func TestNewStaging(t *testing.T) {
	staging, err := NewStaging(config.TasksConfig{StagingBackend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStaging{}, staging)

	staging, err = NewStaging(config.TasksConfig{StagingBackend: " Redis ", StagingTTL: time.Minute}, newFakeListStore())
	require.NoError(t, err)
	assert.IsType(t, &RedisStaging{}, staging)

	_, err = NewStaging(config.TasksConfig{StagingBackend: "redis"}, nil)
	assert.Error(t, err)

	_, err = NewStaging(config.TasksConfig{StagingBackend: "disk"}, nil)
	assert.Error(t, err)
}
