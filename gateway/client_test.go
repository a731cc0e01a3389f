package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/planora/collab-server/livedoc"
)

func TestValidateAccessEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pm/internal/files/doc1/access" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Internal-API-Key"); got != "gw-key" {
			t.Errorf("X-Internal-API-Key = %q", got)
		}
		w.Write([]byte(`{"status":1,"data":{"userId":"u1","userName":"Ann","userAvatar":"a.png","canEdit":true}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "gw-key", "")
	identity, err := c.ValidateAccess(context.Background(), "doc1", "tok")
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	want := Identity{UserID: "u1", UserName: "Ann", UserAvatar: "a.png", CanEdit: true}
	if identity != want {
		t.Errorf("identity = %+v, want %+v", identity, want)
	}
}

func TestValidateAccessFlatRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No envelope, numeric userId, no name.
		w.Write([]byte(`{"userId":42,"canEdit":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", "")
	identity, err := c.ValidateAccess(context.Background(), "doc1", "tok")
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if identity.UserID != "42" {
		t.Errorf("UserID = %q, want coerced \"42\"", identity.UserID)
	}
	if identity.UserName != "Anonymous" {
		t.Errorf("UserName = %q, want default", identity.UserName)
	}
	if identity.CanEdit {
		t.Error("CanEdit should be false")
	}
}

func TestValidateAccessRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"failure status", `{"status":0,"data":{"userId":"u1"}}`, 200},
		{"missing userId in data", `{"status":1,"data":{"canEdit":true}}`, 200},
		{"missing userId flat", `{"role":"viewer"}`, 200},
		{"http error", `{}`, 403},
		{"malformed body", `{{{`, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "", "")
			_, err := c.ValidateAccess(context.Background(), "doc1", "tok")
			if !errors.Is(err, ErrAccessDenied) {
				t.Errorf("err = %v, want ErrAccessDenied", err)
			}
		})
	}
}

func TestLoadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/internal/documents/doc1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Internal-API-Key"); got != "doc-key" {
			t.Errorf("X-Internal-API-Key = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("document service should not receive user credentials, got %q", got)
		}
		w.Write([]byte(`{"status":1,"data":{
			"content":{"type":"doc","content":[{"type":"paragraph"}]},
			"threads":[{"id":"t1","body":"hi"}],
			"version":7}}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "doc-key")
	data, err := c.Load(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data.Version != 7 {
		t.Errorf("Version = %d, want 7", data.Version)
	}
	if data.Content == nil || data.Content.Type != "doc" {
		t.Errorf("Content = %+v", data.Content)
	}
	if len(data.Threads) != 1 {
		t.Fatalf("Threads = %v", data.Threads)
	}
	if id, _ := data.Threads[0].Identifier(); id != "t1" {
		t.Errorf("thread id = %q, want t1", id)
	}
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":{"type":"doc","content":[{"type":""}]},"version":1}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "")
	if _, err := c.Load(context.Background(), "doc1"); err == nil {
		t.Error("content failing validation should be rejected")
	}
}

func TestSaveVersionConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "")
	err := c.Save(context.Background(), "doc1", &livedoc.Node{Type: "doc"}, nil, 3)
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("err = %v, want ErrVersionConflict", err)
	}
}

func TestSavePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "")
	content := &livedoc.Node{Type: "doc", Content: []livedoc.Node{{Type: "paragraph"}}}
	threads := []livedoc.Thread{{"threadId": "t1"}}
	if err := c.Save(context.Background(), "doc1", content, threads, 5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got["expectedVersion"] != float64(5) {
		t.Errorf("expectedVersion = %v, want 5", got["expectedVersion"])
	}
	if got["content"] == nil || got["threads"] == nil {
		t.Errorf("payload missing fields: %v", got)
	}
}

func TestSnapshotPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/internal/documents/doc1/snapshot" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "")
	actor := Identity{UserID: "u1", UserName: "Ann", UserAvatar: "a.png"}
	if err := c.Snapshot(context.Background(), "doc1", ReasonSessionEnd, actor); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := map[string]any{
		"reason":          "SESSION_END",
		"createdBy":       "u1",
		"createdByName":   "Ann",
		"createdByAvatar": "a.png",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}
