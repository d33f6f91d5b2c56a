package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}

	if err := m.Set(ctx, "users", []byte(`[]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := m.Get(ctx, "users")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("expected [], got %q", got)
	}

	if err := m.Delete(ctx, "users"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "users"); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord after delete, got %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := []byte("value")
	if err := m.Set(ctx, "k", original); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	original[0] = 'X'

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("stored value aliased the caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "value" {
		t.Fatalf("returned value aliased the stored slice: %q", again)
	}
}

func TestMemoryDeleteMissingKey(t *testing.T) {
	m := NewMemory()
	if err := m.Delete(context.Background(), "never-set"); err != nil {
		t.Fatalf("delete of a missing key should be a no-op, got %v", err)
	}
}
