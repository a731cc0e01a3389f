package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/planora/collab-server/livedoc"
)

type snapshotRecord struct {
	Reason    string
	Actor     Identity
	Content   *livedoc.Node
	CreatedAt time.Time
}

type docRecord struct {
	content   *livedoc.Node
	threads   []livedoc.Thread
	version   int
	snapshots []snapshotRecord
	updatedAt time.Time
}

// MemoryStorage is an in-memory implementation of Storage. It enforces
// the same optimistic-versioning contract as the document service, which
// makes it useful both for tests and for running without a backend.
type MemoryStorage struct {
	mu   sync.RWMutex
	docs map[string]*docRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string]*docRecord)}
}

// Seed installs a document directly, bypassing version checks.
func (s *MemoryStorage) Seed(docID string, content *livedoc.Node, threads []livedoc.Thread, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docID] = &docRecord{
		content:   content,
		threads:   threads,
		version:   version,
		updatedAt: time.Now(),
	}
}

func (s *MemoryStorage) Load(_ context.Context, docID string) (*DocumentData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document %q not found", docID)
	}
	threads := make([]livedoc.Thread, len(rec.threads))
	copy(threads, rec.threads)
	return &DocumentData{
		Content: rec.content,
		Threads: threads,
		Version: rec.version,
	}, nil
}

func (s *MemoryStorage) Save(_ context.Context, docID string, content *livedoc.Node, threads []livedoc.Thread, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[docID]
	if !ok {
		rec = &docRecord{version: expectedVersion}
		s.docs[docID] = rec
	} else if rec.version != expectedVersion {
		return fmt.Errorf("save %s: expected version %d, have %d: %w",
			docID, expectedVersion, rec.version, ErrVersionConflict)
	}
	rec.content = content
	rec.threads = threads
	rec.version = expectedVersion + 1
	rec.updatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) Snapshot(_ context.Context, docID, reason string, actor Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[docID]
	if !ok {
		return fmt.Errorf("snapshot %s: document not found", docID)
	}
	rec.snapshots = append(rec.snapshots, snapshotRecord{
		Reason:    reason,
		Actor:     actor,
		Content:   rec.content,
		CreatedAt: time.Now(),
	})
	return nil
}

// Version reports the stored version counter for a document.
func (s *MemoryStorage) Version(docID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.docs[docID]; ok {
		return rec.version
	}
	return 0
}

// Snapshots returns the reasons of recorded snapshots, oldest first.
func (s *MemoryStorage) Snapshots(docID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[docID]
	if !ok {
		return nil
	}
	reasons := make([]string, len(rec.snapshots))
	for i, snap := range rec.snapshots {
		reasons[i] = snap.Reason
	}
	return reasons
}
