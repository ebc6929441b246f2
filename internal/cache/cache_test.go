package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	value := []byte("hello")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'J'

	got, ok := c.Get("k")
	if !ok || string(got) != "hello" {
		t.Errorf("expected stored copy 'hello', got %q (found=%v)", got, ok)
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("quizguard:v1:abc", []byte("data"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok := c.Get("quizguard:v1:abc")
	if !ok || string(got) != "data" {
		t.Errorf("expected 'data', got %q (found=%v)", got, ok)
	}

	if _, err := os.Stat(filepath.Join(dir, "quizguard_v1_abc.cache")); err != nil {
		t.Errorf("expected cache file on disk: %v", err)
	}

	if err := c.Delete("quizguard:v1:abc"); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if err := c.Delete("quizguard:v1:abc"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("k", []byte("v"), time.Minute)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected disk entry to expire")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected expired file to be removed")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	_ = os.WriteFile(c.path("k"), []byte("not json"), 0644)

	if _, ok := c.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// A fresh process only has the disk layer
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	got, ok := second.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", got, ok)
	}
	if _, ok := second.memory.Get("k"); !ok {
		t.Error("expected value promoted to memory")
	}

	_ = second.Clear()
	if _, ok := second.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestNew(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a disk dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, DiskDir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a disk dir")
	}
}

func TestResultKey(t *testing.T) {
	q := model.Question{ID: "q1", Stem: "What is 2+2?", Type: model.QuestionTypeFillBlank, Answer: "4"}

	k1 := ResultKey("ns", q)
	if k1 != ResultKey("ns", q) {
		t.Error("expected stable key")
	}
	if k1 == ResultKey("other", q) {
		t.Error("expected namespace to change the key")
	}
	q.Answer = "5"
	if k1 == ResultKey("ns", q) {
		t.Error("expected question content to change the key")
	}
}

func TestNamespace(t *testing.T) {
	cfg := model.DefaultConfig().Scoring
	ns := Namespace("abcd", cfg)
	if ns != Namespace("abcd", cfg) {
		t.Error("expected stable namespace")
	}

	cfg.HighBelow = 0.4
	if ns == Namespace("abcd", cfg) {
		t.Error("expected scoring thresholds to change the namespace")
	}
}
