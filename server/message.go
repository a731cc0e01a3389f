package server

import (
	"encoding/json"

	"github.com/planora/collab-server/livedoc"
)

// Message types exchanged over WebSocket.
const (
	MsgAuth   = "auth"
	MsgDoc    = "doc"
	MsgUpdate = "update"
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgError  = "error"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type    string           `json:"type"`
	DocID   string           `json:"docId,omitempty"`
	Token   string           `json:"token,omitempty"`
	Content *livedoc.Node    `json:"content,omitempty"`
	Threads []livedoc.Thread `json:"threads,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type     string           `json:"type"`
	DocID    string           `json:"docId,omitempty"`
	Content  *livedoc.Node    `json:"content,omitempty"`
	Threads  []livedoc.Thread `json:"threads,omitempty"`
	Users    []UserInfo       `json:"users,omitempty"`
	UserID   string           `json:"userId,omitempty"`
	UserName string           `json:"userName,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// UserInfo describes a connected user.
type UserInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
