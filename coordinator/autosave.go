package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/planora/collab-server/gateway"
	"github.com/planora/collab-server/livedoc"
)

// OnChange debounces content-change notifications into a single trailing
// save per quiet period. Each notification cancels the pending timer and
// arms a new one, so only the last state in a window is persisted.
func (c *Coordinator) OnChange(docID string, doc *livedoc.Document, identity gateway.Identity) {
	s := c.ensureSession(docID)
	s.attach(doc)
	s.touch(c.now())
	s.scheduleSave(c.debounce, func() {
		c.autosave(s, doc, identity)
	})
}

// autosave runs when the debounce window closes: extract the latest
// state, save it with the expected version, and on success advance the
// counter and consult the time-based snapshot policy.
func (c *Coordinator) autosave(s *session, doc *livedoc.Document, identity gateway.Identity) {
	content := c.transformer.Extract(doc)
	if content.IsEmpty() {
		// A never-hydrated document must not overwrite stored state.
		return
	}
	threads := doc.Threads()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	s.saveMu.Lock()
	err := c.saveLocked(ctx, s, content, threads)
	s.saveMu.Unlock()
	if err != nil {
		log.Printf("coordinator: autosave %q failed: %v", s.docID, err)
		return
	}

	now := c.now()
	log.Printf("coordinator: saved %q (v%d)", s.docID, s.currentVersion())
	c.maybeSnapshot(ctx, s, identity, now)
}

// saveLocked issues one save with the session's current version. A stale
// version is recovered once: re-fetch the stored counter, adopt it and
// retry with the same freshly-extracted state. Callers hold saveMu.
func (c *Coordinator) saveLocked(ctx context.Context, s *session, content *livedoc.Node, threads []livedoc.Thread) error {
	version := s.currentVersion()
	err := c.storage.Save(ctx, s.docID, content, threads, version)
	if errors.Is(err, gateway.ErrVersionConflict) {
		data, loadErr := c.storage.Load(ctx, s.docID)
		if loadErr != nil {
			return fmt.Errorf("version conflict at v%d, reload failed: %w", version, loadErr)
		}
		s.setVersion(data.Version)
		version = s.currentVersion()
		log.Printf("coordinator: %q version conflict, retrying at v%d", s.docID, version)
		err = c.storage.Save(ctx, s.docID, content, threads, version)
	}
	if err != nil {
		return err
	}
	s.confirmSave(version)
	return nil
}
