package presence

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisTracker(t *testing.T) *RedisTracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTrackerWithClient(client)
}

func TestRedisTrackerJoinLeave(t *testing.T) {
	ctx := context.Background()
	tr := newTestRedisTracker(t)

	if err := tr.Join(ctx, "doc1", "u1"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := tr.Join(ctx, "doc1", "u2"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	users, err := tr.List(ctx, "doc1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(users)
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("List = %v", users)
	}

	if err := tr.Leave(ctx, "doc1", "u1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	n, err := tr.Count(ctx, "doc1")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestRedisTrackerIsolatesDocuments(t *testing.T) {
	ctx := context.Background()
	tr := newTestRedisTracker(t)

	tr.Join(ctx, "doc1", "u1")
	tr.Join(ctx, "doc2", "u1")

	tr.Leave(ctx, "doc1", "u1")
	n, _ := tr.Count(ctx, "doc2")
	if n != 1 {
		t.Errorf("doc2 count = %d, want 1", n)
	}
}

func TestRedisTrackerDeduplicatesUser(t *testing.T) {
	ctx := context.Background()
	tr := newTestRedisTracker(t)

	tr.Join(ctx, "doc1", "u1")
	tr.Join(ctx, "doc1", "u1")

	n, _ := tr.Count(ctx, "doc1")
	if n != 1 {
		t.Errorf("Count = %d, set should deduplicate", n)
	}
}
