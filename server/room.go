package server

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/planora/collab-server/livedoc"
)

type updateMessage struct {
	client *Client
	msg    ClientMessage
}

// room fans one document's traffic out to its connected clients and
// drives the coordinator's lifecycle hooks. All of a document's events
// are serialized through a single goroutine.
type room struct {
	docID   string
	doc     *livedoc.Document
	hub     *Hub
	clients map[*Client]bool

	// occupants mirrors len(clients) so the hub can read it during the
	// retire check. Written only by the room goroutine.
	occupants atomic.Int32

	join     chan *Client
	leave    chan *Client
	incoming chan updateMessage
	stop     chan struct{}
}

func newRoom(docID string, doc *livedoc.Document, hub *Hub) *room {
	return &room{
		docID:    docID,
		doc:      doc,
		hub:      hub,
		clients:  make(map[*Client]bool),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		incoming: make(chan updateMessage, 64),
		stop:     make(chan struct{}),
	}
}

// Run hydrates the document and then serves the room's traffic. When
// the last client leaves it asks the hub to retire the room; the hub
// decides, so a join racing the teardown lands in a live room or a
// fresh one, never in a dead one. Exit happens only via stop.
func (r *room) Run() {
	r.hub.coord.OnLoadDocument(context.Background(), r.docID, r.doc)

	for {
		select {
		case c := <-r.join:
			r.handleJoin(c)
		case c := <-r.leave:
			r.handleLeave(c)
			if len(r.clients) == 0 {
				r.hub.requestRetire(r)
			}
		case um := <-r.incoming:
			r.handleUpdate(um)
		case <-r.stop:
			return
		}
	}
}

func (r *room) handleJoin(c *Client) {
	r.clients[c] = true
	r.occupants.Add(1)
	c.setRoom(r)

	r.hub.coord.OnConnect(context.Background(), r.docID, c.Identity())

	// Send current document state to the joining client.
	c.sendMsg(ServerMessage{
		Type:    MsgDoc,
		DocID:   r.docID,
		Content: r.doc.Content(),
		Threads: r.doc.Threads(),
		Users:   r.userInfos(),
	})

	// Notify other clients about the new user.
	info := c.Info()
	for other := range r.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				DocID:    r.docID,
				UserID:   info.ID,
				UserName: info.Name,
			})
		}
	}
}

func (r *room) handleLeave(c *Client) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	r.occupants.Add(-1)
	c.setRoom(nil)
	close(c.send)

	r.hub.coord.OnDisconnect(context.Background(), r.docID, r.doc, c.Identity())

	info := c.Info()
	for other := range r.clients {
		other.sendMsg(ServerMessage{
			Type:   MsgLeave,
			DocID:  r.docID,
			UserID: info.ID,
		})
	}
}

func (r *room) handleUpdate(um updateMessage) {
	if !um.client.Identity().CanEdit {
		um.client.sendError("read-only access")
		return
	}
	if err := r.hub.engine.ApplyUpdate(r.doc, um.msg); err != nil {
		log.Printf("room %s: apply update: %v", r.docID, err)
		um.client.sendError("update rejected: " + err.Error())
		return
	}

	r.hub.coord.OnChange(r.docID, r.doc, um.client.Identity())

	// Relay to other clients.
	for c := range r.clients {
		if c != um.client {
			c.sendMsg(ServerMessage{
				Type:    MsgUpdate,
				DocID:   r.docID,
				Content: um.msg.Content,
				Threads: um.msg.Threads,
				UserID:  um.client.Identity().UserID,
			})
		}
	}
}

func (r *room) userInfos() []UserInfo {
	infos := make([]UserInfo, 0, len(r.clients))
	for c := range r.clients {
		infos = append(infos, c.Info())
	}
	return infos
}
