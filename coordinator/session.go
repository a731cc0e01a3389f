package coordinator

import (
	"sync"
	"time"

	"github.com/planora/collab-server/livedoc"
)

// session is the mutable coordinator state for one open document: the
// optimistic-concurrency version counter, snapshot bookkeeping, the
// pending debounced save and the attached connection count.
type session struct {
	docID string

	// saveMu serializes the save path: a firing debounce timer and a
	// disconnect-triggered final save must not interleave their
	// load/save/increment sequences.
	saveMu sync.Mutex

	mu           sync.Mutex
	doc          *livedoc.Document
	version      int
	lastSnapshot time.Time
	lastActivity time.Time
	connections  int
	saveTimer    *time.Timer
}

func newSession(docID string, now time.Time) *session {
	return &session{
		docID:        docID,
		version:      1,
		lastSnapshot: now,
		lastActivity: now,
	}
}

func (s *session) currentVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// setVersion adopts a version loaded from storage. The counter never
// moves backwards.
func (s *session) setVersion(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > s.version {
		s.version = v
	}
}

// confirmSave advances the counter after storage acknowledged a save
// issued with expectedVersion.
func (s *session) confirmSave(expectedVersion int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expectedVersion+1 > s.version {
		s.version = expectedVersion + 1
	}
}

func (s *session) snapshotTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnapshot
}

func (s *session) markSnapshot(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshot = now
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
}

func (s *session) attach(doc *livedoc.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc != nil {
		s.doc = doc
	}
}

func (s *session) document() *livedoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *session) addConnection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections++
	return s.connections
}

func (s *session) dropConnection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connections > 0 {
		s.connections--
	}
	return s.connections
}

func (s *session) connectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// scheduleSave cancels any pending debounced save and arms a new one.
// At most one timer is outstanding per document.
func (s *session) scheduleSave(delay time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(delay, fire)
}

// cancelSave discards a pending debounced save, if any.
func (s *session) cancelSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
}

// idleSince reports whether the session has had no connections and no
// activity since the cutoff.
func (s *session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections == 0 && s.lastActivity.Before(cutoff)
}
