package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/planora/collab-server/presence"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(hub *Hub, tracker presence.Tracker) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	// Who is editing a document right now.
	mux.HandleFunc("/presence/", func(w http.ResponseWriter, r *http.Request) {
		docID := strings.TrimPrefix(r.URL.Path, "/presence/")
		if docID == "" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "document id required"})
			return
		}
		users, err := tracker.List(r.Context(), docID)
		if err != nil {
			log.Printf("handler: presence list %q: %v", docID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "presence unavailable"})
			return
		}
		if users == nil {
			users = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"documentId": docID, "users": users, "count": len(users)})
	})

	// WebSocket endpoint for the collaboration engine.
	mux.HandleFunc("/collaboration", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
