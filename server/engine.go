package server

import (
	"fmt"

	"github.com/planora/collab-server/livedoc"
)

// SyncEngine applies an incoming client update to the live document.
// Conflict-free merge semantics belong to the external collaboration
// engine; implementations of this interface adapt it. The server only
// relays updates and drives the persistence hooks.
type SyncEngine interface {
	ApplyUpdate(doc *livedoc.Document, msg ClientMessage) error
}

// LastWriterWins replaces the document state wholesale with each update.
// It is the fallback engine for clients that send full state.
type LastWriterWins struct{}

func (LastWriterWins) ApplyUpdate(doc *livedoc.Document, msg ClientMessage) error {
	if msg.Content != nil {
		if err := msg.Content.Validate(); err != nil {
			return fmt.Errorf("invalid content: %w", err)
		}
		doc.SetContent(msg.Content)
	}
	for _, t := range msg.Threads {
		id, ok := t.Identifier()
		if !ok {
			return fmt.Errorf("thread without identifier")
		}
		t["threadId"] = id
		doc.MergeThread(id, t)
	}
	return nil
}
