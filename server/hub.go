package server

import (
	"context"
	"log"
	"sync"

	"github.com/planora/collab-server/auth"
	"github.com/planora/collab-server/coordinator"
	"github.com/planora/collab-server/livedoc"
)

type joinRequest struct {
	client *Client
	docID  string
	token  string
}

// Hub routes authenticated clients to per-document rooms. Joins and
// room retirements are both processed on the hub's single goroutine,
// which makes their relative order well defined: a join delivered
// before a retire check keeps the room alive, and a join processed
// after a retirement sees a fresh room.
type Hub struct {
	coord    *coordinator.Coordinator
	engine   SyncEngine
	verifier *auth.Verifier // nil disables local JWT checks
	rooms    map[string]*room
	mu       sync.RWMutex

	joinDoc chan joinRequest
	retire  chan *room
}

func NewHub(coord *coordinator.Coordinator, engine SyncEngine, verifier *auth.Verifier) *Hub {
	return &Hub{
		coord:    coord,
		engine:   engine,
		verifier: verifier,
		rooms:    make(map[string]*room),
		joinDoc:  make(chan joinRequest, 64),
		retire:   make(chan *room, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case req := <-h.joinDoc:
			h.handleJoinDoc(req)
		case r := <-h.retire:
			h.handleRetire(r)
		}
	}
}

func (h *Hub) handleJoinDoc(req joinRequest) {
	if req.docID == "" {
		req.client.sendError("documentId is required")
		return
	}

	ctx := context.Background()

	if h.verifier != nil {
		if err := h.verifier.Verify(req.token); err != nil {
			log.Printf("hub: rejected token for doc %q: %v", req.docID, err)
			req.client.sendError("access denied")
			return
		}
	}

	identity, err := h.coord.OnAuthenticate(ctx, req.docID, req.token)
	if err != nil {
		log.Printf("hub: access denied for doc %q: %v", req.docID, err)
		req.client.sendError("access denied")
		return
	}
	req.client.setIdentity(identity)

	h.mu.Lock()
	r, ok := h.rooms[req.docID]
	if !ok {
		// The room hydrates on its own goroutine, so a slow storage
		// load for one document never stalls joins to the others.
		r = newRoom(req.docID, livedoc.NewDocument(), h)
		h.rooms[req.docID] = r
		go r.Run()
	}
	h.mu.Unlock()

	r.join <- req.client
}

// requestRetire asks the hub to tear the room down. Best effort: if the
// queue is full the room lingers idle until process shutdown.
func (h *Hub) requestRetire(r *room) {
	select {
	case h.retire <- r:
	default:
	}
}

// handleRetire removes a room that emptied out. The hub is the only
// sender on r.join, and this runs on the hub goroutine, so the
// queued-join check is authoritative: a client handed to the room
// before this check keeps it alive.
func (h *Hub) handleRetire(r *room) {
	if r.occupants.Load() > 0 || len(r.join) > 0 {
		return
	}

	h.mu.Lock()
	active := h.rooms[r.docID] == r
	if active {
		delete(h.rooms, r.docID)
	}
	h.mu.Unlock()

	if active {
		close(r.stop)
	}
}

// activeRoom returns the room for a document, if any.
func (h *Hub) activeRoom(docID string) *room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[docID]
}
