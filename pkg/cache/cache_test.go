package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
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

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if k.MetadataKey("Flask", "3.0.0") != k.MetadataKey("flask", "3.0.0") {
		t.Error("MetadataKey should ignore name case")
	}
	if k.MetadataKey("flask", "3.0.0") == k.MetadataKey("flask", "3.0.1") {
		t.Error("Different versions should produce different keys")
	}
	if !strings.HasPrefix(k.MetadataKey("flask", "1"), "meta:") {
		t.Errorf("MetadataKey = %q, want meta: prefix", k.MetadataKey("flask", "1"))
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "pypi:")
	key := scoped.MetadataKey("requests", "2.32.0")
	if want := "pypi:" + NewDefaultKeyer().MetadataKey("requests", "2.32.0"); key != want {
		t.Errorf("ScopedKeyer key = %q, want %q", key, want)
	}

	nilInner := NewScopedKeyer(nil, "x:")
	if !strings.HasPrefix(nilInner.MetadataKey("a", "1"), "x:meta:") {
		t.Errorf("nil inner keyer should fall back to default, got %q", nilInner.MetadataKey("a", "1"))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `{"a":1}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFileCacheExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := os.MkdirAll(filepath.Dir(c.path("bad")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v; want miss without error", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cache should be empty after Clear")
	}
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, "redis://"+srv.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "pypi:missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "pypi:a", []byte("doc-a"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "pypi:b", []byte("doc-b"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "pypi:a")
	if err != nil || !hit || string(data) != "doc-a" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	srv.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "pypi:a"); hit {
		t.Error("entry should expire with its TTL")
	}
	if _, hit, _ := c.Get(ctx, "pypi:b"); !hit {
		t.Error("entry without TTL should persist")
	}

	if err := c.Set(ctx, "other:c", []byte("c"), 0); err != nil {
		t.Fatal(err)
	}
	n, err := c.Clear(ctx, "pypi:*")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d keys, want 1", n)
	}
	if !srv.Exists("other:c") {
		t.Error("Clear should only remove matching keys")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, "redis://"+addr+"/0"); err == nil {
		t.Error("NewRedisCache should fail when redis is down")
	}
	if _, err := NewRedisCache(ctx, "not a url"); err == nil {
		t.Error("NewRedisCache should reject malformed urls")
	}
}
