package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestInMemoryStoreTruncatesToWindow(t *testing.T) {
	store := NewInMemoryStore(20, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		turn := Turn{Input: fmt.Sprintf("q%d", i), Output: fmt.Sprintf("a%d", i)}
		if err := store.Append(ctx, "session-1", turn); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	turns, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(turns) != 20 {
		t.Fatalf("expected window of 20 turns, got %d", len(turns))
	}
	if turns[0].Input != "q6" {
		t.Fatalf("expected oldest surviving turn q6, got %q", turns[0].Input)
	}
	if turns[19].Input != "q25" {
		t.Fatalf("expected newest turn q25, got %q", turns[19].Input)
	}
}

func TestInMemoryStoreExpiresSessions(t *testing.T) {
	store := NewInMemoryStore(20, 24*time.Hour)
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Append(ctx, "session-1", Turn{Input: "q1", Output: "a1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	current = current.Add(25 * time.Hour)

	turns, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected expired session to read empty, got %d turns", len(turns))
	}
}

func TestInMemoryStoreResetsExpiryOnWrite(t *testing.T) {
	store := NewInMemoryStore(20, 24*time.Hour)
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Append(ctx, "session-1", Turn{Input: "q1", Output: "a1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	current = current.Add(20 * time.Hour)
	if err := store.Append(ctx, "session-1", Turn{Input: "q2", Output: "a2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// 40h after the first write, but only 20h after the second.
	current = current.Add(20 * time.Hour)

	turns, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected the write to reset the expiry clock, got %d turns", len(turns))
	}
}

func TestInMemoryStoreUnknownSessionIsEmpty(t *testing.T) {
	store := NewInMemoryStore(20, time.Hour)

	turns, err := store.Load(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}
}

func TestSessionKeyNamespacing(t *testing.T) {
	if got := sessionKey("abc"); got != "conversation:abc" {
		t.Fatalf("unexpected key: %q", got)
	}
}
