package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("location", "12.3456", "98.7654", "en-US")
	b := Key("location", "12.3456", "98.7654", "en-US")
	if a != b {
		t.Errorf("identical parameters must produce identical keys: %s != %s", a, b)
	}
}

func TestKey_DistinctBuckets(t *testing.T) {
	a := Key("location", "12.3456", "98.7654", "en-US")
	b := Key("location", "12.3457", "98.7654", "en-US")
	if a == b {
		t.Error("coordinates in different rounding buckets must not collide")
	}
}

func TestKey_NoPartBleed(t *testing.T) {
	// Concatenation across part boundaries must not collide.
	a := Key("geocode", "pari", "s")
	b := Key("geocode", "paris", "")
	if a == b {
		t.Error("part boundaries must be preserved in the key")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Fatalf("expected hit before expiry, got found=%v val=%q", found, val)
	}

	time.Sleep(80 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected miss after expiry")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set(Key("geocode", "eiffel tower"), []byte(`{"lat":48.8584}`), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, found := c.Get(Key("geocode", "eiffel tower"))
	if !found {
		t.Fatal("expected hit")
	}
	if string(val) != `{"lat":48.8584}` {
		t.Errorf("unexpected value: %s", val)
	}
}

func TestDiskCache_ExpiredEntryEvictedOnRead(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("v"), -time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if _, found := c.Get("k"); found {
		t.Error("expected miss for expired entry")
	}

	// The expired file is removed lazily by the read.
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Error("expected expired entry to be deleted on read")
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "k.cache"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, found := c.Get("k"); found {
		t.Error("corrupt entry must read as a miss, never an error")
	}
}

func TestDiskCache_UnwritableDir(t *testing.T) {
	// A file where the cache dir should be makes every write fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewDiskCache(blocked, time.Hour)
	if err := c.Set("k", []byte("v"), time.Hour); err == nil {
		t.Error("expected set error for unwritable cache dir")
	}
	// Reads still behave as misses, not failures.
	if _, found := c.Get("k"); found {
		t.Error("expected miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	// Seed only the disk layer.
	if err := c.disk.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Fatalf("expected disk hit, got found=%v", found)
	}

	if _, found := c.memory.Get("k"); !found {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	if err := c.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("noop set must not fail: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("noop cache must always miss")
	}
}
