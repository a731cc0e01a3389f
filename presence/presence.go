// Package presence tracks which users are attached to which documents.
// The memory tracker covers a single node; the Redis tracker lets other
// services inspect who is editing what.
package presence

import (
	"context"
	"sync"
)

// Tracker records per-document connected users.
type Tracker interface {
	Join(ctx context.Context, docID, userID string) error
	Leave(ctx context.Context, docID, userID string) error
	List(ctx context.Context, docID string) ([]string, error)
	Count(ctx context.Context, docID string) (int, error)
}

// Noop discards all presence updates.
type Noop struct{}

func (Noop) Join(context.Context, string, string) error     { return nil }
func (Noop) Leave(context.Context, string, string) error    { return nil }
func (Noop) List(context.Context, string) ([]string, error) { return nil, nil }
func (Noop) Count(context.Context, string) (int, error)     { return 0, nil }

// MemoryTracker is an in-process Tracker. It refcounts users so the same
// user in two tabs stays present until both close.
type MemoryTracker struct {
	mu   sync.Mutex
	docs map[string]map[string]int
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{docs: make(map[string]map[string]int)}
}

func (t *MemoryTracker) Join(_ context.Context, docID, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	users, ok := t.docs[docID]
	if !ok {
		users = make(map[string]int)
		t.docs[docID] = users
	}
	users[userID]++
	return nil
}

func (t *MemoryTracker) Leave(_ context.Context, docID, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	users, ok := t.docs[docID]
	if !ok {
		return nil
	}
	users[userID]--
	if users[userID] <= 0 {
		delete(users, userID)
	}
	if len(users) == 0 {
		delete(t.docs, docID)
	}
	return nil
}

func (t *MemoryTracker) List(_ context.Context, docID string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := t.docs[docID]
	result := make([]string, 0, len(users))
	for id := range users {
		result = append(result, id)
	}
	return result, nil
}

func (t *MemoryTracker) Count(_ context.Context, docID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.docs[docID]), nil
}
