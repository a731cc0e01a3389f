package coordinator

import (
	"context"
	"log"
	"time"

	"github.com/planora/collab-server/gateway"
	"github.com/planora/collab-server/livedoc"
)

// maybeSnapshot applies the time-based policy after a successful
// autosave. On snapshot failure the timestamp stays put, so the next
// autosave retries.
func (c *Coordinator) maybeSnapshot(ctx context.Context, s *session, identity gateway.Identity, now time.Time) {
	if now.Sub(s.snapshotTime()) <= c.snapshotInterval {
		return
	}
	actor := identity
	if actor.UserID == "" {
		actor = gateway.SystemActor
	}
	if err := c.storage.Snapshot(ctx, s.docID, gateway.ReasonAuto30Min, actor); err != nil {
		log.Printf("coordinator: auto-snapshot %q failed: %v", s.docID, err)
		return
	}
	log.Printf("coordinator: created auto-snapshot for %q", s.docID)
	s.markSnapshot(now)
}

// finalize runs when a document has no remaining connections: cancel any
// pending debounced save, save the final state unconditionally, request
// a SESSION_END snapshot regardless of elapsed time, and retire the
// registry entry. Snapshot failure never blocks teardown.
func (c *Coordinator) finalize(ctx context.Context, s *session, doc *livedoc.Document, identity gateway.Identity) {
	s.cancelSave()
	defer c.remove(s.docID)

	if doc == nil {
		log.Printf("coordinator: finalize %q: no live document, dropping session", s.docID)
		return
	}

	actor := identity
	if actor.UserID == "" {
		actor = gateway.SystemActor
	}

	content := c.transformer.Extract(doc)
	threads := doc.Threads()

	s.saveMu.Lock()
	err := c.saveLocked(ctx, s, content, threads)
	s.saveMu.Unlock()
	if err != nil {
		// No later retry exists on this path; the loss is explicit.
		log.Printf("coordinator: final save %q failed: %v", s.docID, err)
	}

	if err := c.storage.Snapshot(ctx, s.docID, gateway.ReasonSessionEnd, actor); err != nil {
		log.Printf("coordinator: session-end snapshot %q failed: %v", s.docID, err)
		return
	}
	log.Printf("coordinator: created session-end snapshot for %q", s.docID)
}
