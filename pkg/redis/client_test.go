package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/hotelops-backend/pkg/config"
)

type mockCmdable struct {
	values      map[string]string
	lists       map[string][]string
	expireCalls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		values:      map[string]string{},
		lists:       map[string][]string{},
		expireCalls: map[string]time.Duration{},
	}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := m.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := m.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key], _ = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.values[key], _ = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) RPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		s, _ := v.(string)
		m.lists[key] = append(m.lists[key], s)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockCmdable) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(append([]string(nil), m.lists[key]...), nil)
}

func (m *mockCmdable) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	list := m.lists[key]
	if int(start) >= len(list) {
		delete(m.lists, key)
		return redis.NewStatusResult("OK", nil)
	}
	m.lists[key] = append([]string(nil), list[start:]...)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.lists[k]; ok {
			delete(m.lists, k)
			n++
		}
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestListLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.StagingKey(42)

	if err := client.Append(ctx, key, `{"item_id":1,"quantity":2}`, time.Hour); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := client.Append(ctx, key, `{"item_id":3,"quantity":1}`, time.Hour); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if mock.expireCalls[key] != time.Hour {
		t.Fatalf("expected ttl refresh on append")
	}

	values, err := client.Range(ctx, key)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(values) != 2 || values[0] != `{"item_id":1,"quantity":2}` {
		t.Fatalf("unexpected list contents %v", values)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	values, err = client.Range(ctx, key)
	if err != nil || len(values) != 0 {
		t.Fatalf("expected empty list after delete, got %v (%v)", values, err)
	}
}

func TestTrimFrontKeepsLaterEntries(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.StagingKey(9)

	for _, v := range []string{"a", "b", "c"} {
		if err := client.Append(ctx, key, v, 0); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := client.TrimFront(ctx, key, 2); err != nil {
		t.Fatalf("trim failed: %v", err)
	}
	values, err := client.Range(ctx, key)
	if err != nil || len(values) != 1 || values[0] != "c" {
		t.Fatalf("expected [c] after trim, got %v (%v)", values, err)
	}
	if err := client.TrimFront(ctx, key, 5); err != nil {
		t.Fatalf("trim failed: %v", err)
	}
	values, _ = client.Range(ctx, key)
	if len(values) != 0 {
		t.Fatalf("expected empty list, got %v", values)
	}
	if err := (&Client{}).TrimFront(ctx, key, 1); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v1" {
		t.Fatalf("expected v1, got %q (%v)", got, err)
	}
}

func TestSetOverwritesReservation(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if ok, err := client.SetNX(ctx, "k", "pending", time.Minute); err != nil || !ok {
		t.Fatalf("expected reservation, ok=%v err=%v", ok, err)
	}
	if err := client.Set(ctx, "k", "final", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "final" {
		t.Fatalf("expected final, got %q (%v)", got, err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "ho:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.StagingKey(7); got != "ho:staging:task:7" {
		t.Fatalf("unexpected staging key %s", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Range(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing address to fail")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options db=%d pool=%d", opts.DB, opts.PoolSize)
	}
}
