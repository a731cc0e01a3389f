package gateway

import (
	"context"
	"errors"

	"github.com/planora/collab-server/livedoc"
)

// Snapshot reasons understood by the document service.
const (
	ReasonAuto30Min  = "AUTO_30MIN"
	ReasonSessionEnd = "SESSION_END"
)

var (
	// ErrAccessDenied means the session-open attempt must be rejected:
	// the access call failed, the envelope reported failure, or the
	// returned record lacks a usable identity.
	ErrAccessDenied = errors.New("access denied")

	// ErrVersionConflict means the backend rejected a save because the
	// expectedVersion was stale.
	ErrVersionConflict = errors.New("version conflict")
)

// Identity is the authenticated user attached to a collaboration session.
type Identity struct {
	UserID     string
	UserName   string
	UserAvatar string
	CanEdit    bool
}

// SystemActor is the identity used for storage operations that run
// without a user context (defaults from the collaboration protocol).
var SystemActor = Identity{UserID: "0", UserName: "Anonymous"}

// DocumentData is the persisted state of a document as loaded from storage.
type DocumentData struct {
	Content *livedoc.Node
	Threads []livedoc.Thread
	Version int
}

// Storage abstracts document persistence. Implementations: Client
// (internal HTTP API), MemoryStorage (tests, standalone runs).
type Storage interface {
	Load(ctx context.Context, docID string) (*DocumentData, error)
	Save(ctx context.Context, docID string, content *livedoc.Node, threads []livedoc.Thread, expectedVersion int) error
	Snapshot(ctx context.Context, docID, reason string, actor Identity) error
}
