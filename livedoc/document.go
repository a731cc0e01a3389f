package livedoc

import "sync"

// Document is the server-side handle onto a live collaborative document:
// the current content tree plus the shared thread collection. The
// synchronization engine owns merge semantics; this handle only holds
// state for hydration, extraction and relay.
type Document struct {
	mu       sync.RWMutex
	content  *Node
	threads  *ThreadSet
	hydrated bool
}

func NewDocument() *Document {
	return &Document{threads: NewThreadSet()}
}

// ApplyInitial seeds the document with persisted content. It applies at
// most once per document lifetime; later calls are ignored so a reloaded
// payload can never clobber live edits.
func (d *Document) ApplyInitial(content *Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hydrated {
		return false
	}
	d.content = content
	d.hydrated = true
	return true
}

// SetContent replaces the live content tree with a new engine state.
func (d *Document) SetContent(content *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
	d.hydrated = true
}

// Content returns the current content tree, nil if never set.
func (d *Document) Content() *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// MergeThread stores a thread in the shared collection keyed by id.
func (d *Document) MergeThread(id string, t Thread) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threads.Set(id, t)
}

// Threads returns the thread payloads in insertion order.
func (d *Document) Threads() []Thread {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threads.Values()
}

// ThreadCount reports the number of distinct threads.
func (d *Document) ThreadCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threads.Len()
}
