package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
)

func TestMemoryCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}

	value := []byte("report")
	if err := c.Set(ctx, "last", value, 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	value[0] = 'X'

	got, err := c.Get(ctx, "last")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(got) != "report" {
		t.Errorf("Expected stored copy 'report', got %q", got)
	}

	if err := c.Delete(ctx, "last"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := c.Get(ctx, "last"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	if err := c.Set(ctx, "snapshot", []byte("{}"), 10*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := c.Get(ctx, "snapshot"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Expected expired key to miss, got %v", err)
	}
}
