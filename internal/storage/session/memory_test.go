package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := chat.NewSession("sess-1")
	sess.Append(chat.NewUserMessage("hello"))
	sess.LeadScore = 42
	sess.Lead.Email = "ana@brightleaf.com"

	if err := store.Put(ctx, sess, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.LeadScore != 42 || got.Lead.Email != "ana@brightleaf.com" {
		t.Fatalf("session did not round-trip: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("messages did not round-trip: %+v", got.Messages)
	}
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := chat.NewSession("sess-1")
	sess.LeadScore = 10
	if err := store.Put(ctx, sess, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// Mutating the caller's value after Put must not leak into the store.
	sess.LeadScore = 99

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.LeadScore != 10 {
		t.Fatalf("store aliased the caller's session: score=%d", got.LeadScore)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	if err := store.Put(ctx, chat.NewSession("sess-1"), time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := store.Get(ctx, "sess-1"); err != nil {
		t.Fatalf("session expired early: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestMemoryStorePutReArmsTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	sess := chat.NewSession("sess-1")
	if err := store.Put(ctx, sess, time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	now = now.Add(45 * time.Minute)
	if err := store.Put(ctx, sess, time.Hour); err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	// 30 minutes past the first deadline, but within the re-armed one.
	now = now.Add(45 * time.Minute)
	if _, err := store.Get(ctx, "sess-1"); err != nil {
		t.Fatalf("re-armed session expired: %v", err)
	}
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	if err := store.Put(ctx, chat.NewSession("sess-1"), 0); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	now = now.Add(DefaultTTL - time.Minute)
	if _, err := store.Get(ctx, "sess-1"); err != nil {
		t.Fatalf("session expired before default TTL: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound past default TTL, got %v", err)
	}
}
