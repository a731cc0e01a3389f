// Package coordinator decides when and what to persist for live
// collaborative documents: it gates session admission, hydrates freshly
// opened documents from storage, debounces outgoing writes, tracks the
// optimistic-concurrency version per document and triggers durable
// snapshots. It never blocks the editing path: every storage failure
// degrades durability, not editing.
package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/planora/collab-server/gateway"
	"github.com/planora/collab-server/livedoc"
	"github.com/planora/collab-server/presence"
)

const (
	saveTimeout   = 15 * time.Second
	sweepInterval = time.Minute
)

// Transformer converts between the backend's structured content and the
// live document's native state. The synchronization engine supplies the
// real implementation; the coordinator only drives it.
type Transformer interface {
	Hydrate(doc *livedoc.Document, content *livedoc.Node) error
	Extract(doc *livedoc.Document) *livedoc.Node
}

// AccessValidator decides whether a credential may open a document.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, docID, token string) (gateway.Identity, error)
}

// Options tunes the coordinator's policies. Zero values fall back to the
// production defaults.
type Options struct {
	Debounce         time.Duration // quiet period before an autosave (default 5s)
	SnapshotInterval time.Duration // elapsed time before an AUTO_30MIN snapshot (default 30m)
	SessionTTL       time.Duration // idle lifetime before a session is swept; 0 disables the sweeper
	Transformer      Transformer
	Presence         presence.Tracker
}

// Coordinator owns the process-wide session registry and implements the
// lifecycle hooks the collaboration engine invokes.
type Coordinator struct {
	storage          gateway.Storage
	access           AccessValidator
	transformer      Transformer
	presence         presence.Tracker
	debounce         time.Duration
	snapshotInterval time.Duration
	sessionTTL       time.Duration
	now              func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	stop chan struct{}
	done chan struct{}
}

func New(storage gateway.Storage, access AccessValidator, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = 5 * time.Second
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = 30 * time.Minute
	}
	if opts.Transformer == nil {
		opts.Transformer = livedoc.NativeTransformer{}
	}
	if opts.Presence == nil {
		opts.Presence = presence.Noop{}
	}
	c := &Coordinator{
		storage:          storage,
		access:           access,
		transformer:      opts.Transformer,
		presence:         opts.Presence,
		debounce:         opts.Debounce,
		snapshotInterval: opts.SnapshotInterval,
		sessionTTL:       opts.SessionTTL,
		now:              time.Now,
		sessions:         make(map[string]*session),
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// OnAuthenticate validates a session-open request. Rejection is the only
// error this package ever surfaces to the editing client.
func (c *Coordinator) OnAuthenticate(ctx context.Context, docID, token string) (gateway.Identity, error) {
	return c.access.ValidateAccess(ctx, docID, token)
}

// OnLoadDocument hydrates a freshly-opened document from storage and
// registers its session. Hydration failure is non-fatal: the document
// opens empty rather than blocking admission.
func (c *Coordinator) OnLoadDocument(ctx context.Context, docID string, doc *livedoc.Document) {
	s := c.ensureSession(docID)
	s.attach(doc)

	data, err := c.storage.Load(ctx, docID)
	if err != nil {
		log.Printf("coordinator: hydrate %q failed, opening empty: %v", docID, err)
		return
	}
	if data.Version > 0 {
		s.setVersion(data.Version)
	}
	if data.Content != nil {
		if err := c.transformer.Hydrate(doc, data.Content); err != nil {
			log.Printf("coordinator: hydrate %q content failed: %v", docID, err)
		}
	}
	for _, t := range data.Threads {
		id, ok := t.Identifier()
		if !ok {
			log.Printf("coordinator: %q: skipping thread without identifier", docID)
			continue
		}
		// The primary field must always be populated in the live copy.
		t["threadId"] = id
		doc.MergeThread(id, t)
	}
}

// OnConnect records a new editing connection on the document.
func (c *Coordinator) OnConnect(ctx context.Context, docID string, identity gateway.Identity) {
	s := c.ensureSession(docID)
	count := s.addConnection()
	s.touch(c.now())
	if err := c.presence.Join(ctx, docID, identity.UserID); err != nil {
		log.Printf("coordinator: presence join %q failed: %v", docID, err)
	}
	log.Printf("coordinator: user %s joined %q (%d connected)", identity.UserID, docID, count)
}

// OnDisconnect drops a connection; when the last one closes, the session
// is finalized: unconditional save, SESSION_END snapshot, registry entry
// removed.
func (c *Coordinator) OnDisconnect(ctx context.Context, docID string, doc *livedoc.Document, identity gateway.Identity) {
	s := c.lookup(docID)
	if s == nil {
		return
	}
	if err := c.presence.Leave(ctx, docID, identity.UserID); err != nil {
		log.Printf("coordinator: presence leave %q failed: %v", docID, err)
	}
	if remaining := s.dropConnection(); remaining > 0 {
		return
	}
	if doc == nil {
		doc = s.document()
	}
	c.finalize(ctx, s, doc, identity)
}

// SessionCount reports the number of registered document sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Close stops the sweeper and finalizes every remaining session as if
// its last connection had closed, so a shutdown still produces the final
// save and SESSION_END snapshot.
func (c *Coordinator) Close(ctx context.Context) {
	close(c.stop)
	<-c.done

	c.mu.Lock()
	remaining := make([]*session, 0, len(c.sessions))
	for _, s := range c.sessions {
		remaining = append(remaining, s)
	}
	c.mu.Unlock()

	for _, s := range remaining {
		c.finalize(ctx, s, s.document(), gateway.SystemActor)
	}
}

func (c *Coordinator) ensureSession(docID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[docID]
	if !ok {
		s = newSession(docID, c.now())
		c.sessions[docID] = s
	}
	return s
}

func (c *Coordinator) lookup(docID string) *session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[docID]
}

func (c *Coordinator) remove(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, docID)
}

// sweepLoop evicts sessions that never received a clean disconnect, so
// the registry cannot grow without bound in a long-running process.
func (c *Coordinator) sweepLoop() {
	defer close(c.done)
	if c.sessionTTL <= 0 {
		<-c.stop
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Coordinator) sweep() {
	cutoff := c.now().Add(-c.sessionTTL)

	c.mu.Lock()
	var stale []*session
	for _, s := range c.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	c.mu.Unlock()

	for _, s := range stale {
		log.Printf("coordinator: sweeping idle session %q", s.docID)
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		c.finalize(ctx, s, s.document(), gateway.SystemActor)
		cancel()
	}
}
