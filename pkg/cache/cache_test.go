package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestKey(t *testing.T) {
	k := Key("info", "yay", "paru")
	if k != Key("info", "yay", "paru") {
		t.Error("Key should be deterministic")
	}
	if !strings.HasPrefix(k, "info:") || len(k) != len("info:")+64 {
		t.Errorf("Key = %q, want info: followed by a sha256 hex digest", k)
	}
	tests := []struct {
		name  string
		other string
	}{
		{"order", Key("info", "paru", "yay")},
		{"kind", Key("search", "yay", "paru")},
		{"split", Key("info", "yaypar", "u")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.other == k {
				t.Errorf("Key collided with %s variant", tt.name)
			}
		})
	}
}

func TestNullCacheClear(t *testing.T) {
	c, ok := NewNullCache().(interface{ Clear(context.Context) error })
	if !ok {
		t.Fatal("NullCache should support Clear")
	}
	if err := c.Clear(context.Background()); err != nil {
		t.Errorf("Clear error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "aur:info:yay", []byte(`{"v":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "aur:info:yay")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != `{"v":1}` {
		t.Errorf("Get data = %s", data)
	}

	if err := c.Delete(ctx, "aur:info:yay"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "aur:info:yay"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "aur:info:yay"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s should be cleared", k)
		}
	}
	if err := c.Set(ctx, "c", []byte("3"), 0); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}

func TestNamespace(t *testing.T) {
	ctx := context.Background()
	base, _ := NewFileCache(t.TempDir())
	aur := Namespace(base, "aur:")
	nested := Namespace(aur, "srcinfo:")

	if err := aur.Set(ctx, "yay", []byte("info"), 0); err != nil {
		t.Fatal(err)
	}
	if err := nested.Set(ctx, "yay", []byte("srcinfo"), 0); err != nil {
		t.Fatal(err)
	}

	got, hit, _ := base.Get(ctx, "aur:yay")
	if !hit || string(got) != "info" {
		t.Errorf("base aur:yay = %q, %v", got, hit)
	}
	got, hit, _ = base.Get(ctx, "aur:srcinfo:yay")
	if !hit || string(got) != "srcinfo" {
		t.Errorf("base aur:srcinfo:yay = %q, %v", got, hit)
	}
	if _, hit, _ := base.Get(ctx, "yay"); hit {
		t.Error("unprefixed key should not exist")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type rec struct {
		Name  string `json:"name"`
		Votes int    `json:"votes"`
	}
	if err := SetJSON(ctx, c, "r", rec{"yay", 2000}, time.Hour); err != nil {
		t.Fatal(err)
	}
	var out rec
	ok, err := GetJSON(ctx, c, "r", &out)
	if err != nil || !ok {
		t.Fatalf("GetJSON = %v, %v", ok, err)
	}
	if out.Name != "yay" || out.Votes != 2000 {
		t.Errorf("GetJSON decoded %+v", out)
	}

	_ = c.Set(ctx, "garbage", []byte("{"), 0)
	if ok, err := GetJSON(ctx, c, "garbage", &out); ok || err != nil {
		t.Errorf("undecodable entry should be a miss, got %v, %v", ok, err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("503"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		perm := errors.New("404")
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return perm
		})
		if !errors.Is(err, perm) || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := Retry(cctx, 3, time.Hour, func() error {
			return Retryable(errors.New("timeout"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("AURORUS_TEST_REDIS")
	if addr == "" {
		t.Skip("AURORUS_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "aurorus-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
}
