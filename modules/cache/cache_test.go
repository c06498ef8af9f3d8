package cache

import (
	"context"
	"testing"
	"time"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := New(NewMemoryBackend(), "test:", time.Minute)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := c.Set(ctx, "key1", payload{Name: "alpha", Count: 3}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got payload
	found, err := c.Get(ctx, "key1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got.Name != "alpha" || got.Count != 3 {
		t.Errorf("Get() = %+v, want {alpha 3}", got)
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	found, err = c.Get(ctx, "key1", &got)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Error("Get() after delete found = true, want false")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(NewMemoryBackend(), "test:", time.Minute)
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "ephemeral", "value", 10*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}

	var got string
	if found, _ := c.Get(ctx, "ephemeral", &got); !found {
		t.Fatal("value should be present before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if found, _ := c.Get(ctx, "ephemeral", &got); found {
		t.Error("value should be gone after TTL")
	}
}

func TestCache_DeletePattern(t *testing.T) {
	c := New(NewMemoryBackend(), "test:", time.Minute)
	ctx := context.Background()

	keys := []string{"conversations:111", "conversations:222", "presence:111"}
	for _, key := range keys {
		if err := c.Set(ctx, key, "x"); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	if err := c.DeletePattern(ctx, "conversations:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var got string
	if found, _ := c.Get(ctx, "conversations:111", &got); found {
		t.Error("conversations:111 should be deleted")
	}
	if found, _ := c.Get(ctx, "conversations:222", &got); found {
		t.Error("conversations:222 should be deleted")
	}
	if found, _ := c.Get(ctx, "presence:111", &got); !found {
		t.Error("presence:111 should survive the pattern delete")
	}
}

func TestCache_Stats(t *testing.T) {
	c := New(NewMemoryBackend(), "test:", time.Minute)
	ctx := context.Background()

	var got string
	c.Get(ctx, "missing", &got) // miss
	c.Set(ctx, "k", "v")        // set
	c.Get(ctx, "k", &got)       // hit
	c.Delete(ctx, "k")          // delete

	stats := c.StatsSnapshot()
	if stats.Hits != 1 {
		t.Errorf("stats.Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("stats.Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("stats.Sets = %d, want 1", stats.Sets)
	}
	if stats.Deletes != 1 {
		t.Errorf("stats.Deletes = %d, want 1", stats.Deletes)
	}
}

func TestPresence(t *testing.T) {
	c := New(NewMemoryBackend(), "test:", time.Minute)
	ctx := context.Background()

	online, _, err := c.IsOnline(ctx, "919937320320")
	if err != nil {
		t.Fatalf("IsOnline() error = %v", err)
	}
	if online {
		t.Error("IsOnline() = true before SetOnline")
	}

	before := time.Now().UTC()
	if err := c.SetOnline(ctx, "919937320320"); err != nil {
		t.Fatalf("SetOnline() error = %v", err)
	}

	online, lastSeen, err := c.IsOnline(ctx, "919937320320")
	if err != nil {
		t.Fatalf("IsOnline() error = %v", err)
	}
	if !online {
		t.Error("IsOnline() = false after SetOnline")
	}
	if lastSeen.Before(before.Add(-time.Second)) {
		t.Errorf("lastSeen = %v, want at or after %v", lastSeen, before)
	}
}
