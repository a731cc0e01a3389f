package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/planora/collab-server/livedoc"
)

const requestTimeout = 10 * time.Second

// Client performs all network I/O against the backend tier: the access
// endpoint on the API gateway and the three document-service operations.
// Every outbound call carries a service-to-service key, never the end
// user's credential (except the access call, which forwards both).
type Client struct {
	httpClient  *http.Client
	gatewayURL  string
	documentURL string
	internalKey string
	documentKey string
}

func NewClient(gatewayURL, documentURL, internalKey, documentKey string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		gatewayURL:  gatewayURL,
		documentURL: documentURL,
		internalKey: internalKey,
		documentKey: documentKey,
	}
}

// envelope is the wrapped response shape most backend endpoints use.
// Status 1 means success. Data may be absent when the endpoint responds
// with a flat record instead.
type envelope struct {
	Status *int            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// unwrap returns the payload record from either response shape: the
// nested data field when present, otherwise the whole body.
func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Status != nil && *env.Status != 1 {
		return nil, fmt.Errorf("backend status %d", *env.Status)
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data, nil
	}
	return body, nil
}

// ValidateAccess asks the gateway whether the bearer credential may open
// the document. Any transport error, failure status or identity record
// without a userId rejects the session.
func (c *Client) ValidateAccess(ctx context.Context, docID, token string) (Identity, error) {
	url := c.gatewayURL + "/api/pm/internal/files/" + docID + "/access"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Internal-API-Key", c.internalKey)

	body, err := c.do(req, "validate access", docID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}
	record, err := unwrap(body)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(record, &fields); err != nil {
		return Identity{}, fmt.Errorf("%w: decode identity: %v", ErrAccessDenied, err)
	}
	userID := stringField(fields, "userId")
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: identity missing userId", ErrAccessDenied)
	}
	canEdit, _ := fields["canEdit"].(bool)
	identity := Identity{
		UserID:     userID,
		UserName:   stringField(fields, "userName"),
		UserAvatar: stringField(fields, "userAvatar"),
		CanEdit:    canEdit,
	}
	if identity.UserName == "" {
		identity.UserName = "Anonymous"
	}
	return identity, nil
}

// Load fetches the persisted content, threads and version of a document.
func (c *Client) Load(ctx context.Context, docID string) (*DocumentData, error) {
	req, err := c.documentRequest(ctx, http.MethodGet, docID, "", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, "load document", docID)
	if err != nil {
		return nil, err
	}
	record, err := unwrap(body)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", docID, err)
	}

	var payload struct {
		Content *livedoc.Node    `json:"content"`
		Threads []livedoc.Thread `json:"threads"`
		Version int              `json:"version"`
	}
	if err := json.Unmarshal(record, &payload); err != nil {
		return nil, fmt.Errorf("load document %s: decode payload: %w", docID, err)
	}
	if payload.Content != nil {
		if err := payload.Content.Validate(); err != nil {
			return nil, fmt.Errorf("load document %s: invalid content: %w", docID, err)
		}
	}
	return &DocumentData{
		Content: payload.Content,
		Threads: payload.Threads,
		Version: payload.Version,
	}, nil
}

// Save writes the current state with an optimistic-concurrency token.
// A stale expectedVersion surfaces as ErrVersionConflict.
func (c *Client) Save(ctx context.Context, docID string, content *livedoc.Node, threads []livedoc.Thread, expectedVersion int) error {
	payload := map[string]any{
		"content":         content,
		"threads":         threads,
		"expectedVersion": expectedVersion,
	}
	req, err := c.documentRequest(ctx, http.MethodPut, docID, "", payload)
	if err != nil {
		return err
	}
	_, err = c.do(req, "save document", docID)
	return err
}

// Snapshot asks the backend to materialize an additive point-in-time
// copy of the document. It never touches the live record.
func (c *Client) Snapshot(ctx context.Context, docID, reason string, actor Identity) error {
	payload := map[string]any{
		"reason":          reason,
		"createdBy":       actor.UserID,
		"createdByName":   actor.UserName,
		"createdByAvatar": actor.UserAvatar,
	}
	req, err := c.documentRequest(ctx, http.MethodPost, docID, "/snapshot", payload)
	if err != nil {
		return err
	}
	_, err = c.do(req, "create snapshot", docID)
	return err
}

func (c *Client) documentRequest(ctx context.Context, method, docID, suffix string, payload any) (*http.Request, error) {
	url := c.documentURL + "/api/internal/documents/" + docID + suffix
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Internal-API-Key", c.documentKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do runs one outbound call, logging failures with the operation's
// context and a correlation id so backend logs can be matched up.
func (c *Client) do(req *http.Request, op, docID string) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("gateway: %s failed for doc %q (request %s): %v", op, docID, requestID, err)
		return nil, fmt.Errorf("%s %s: %w", op, docID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("gateway: %s read failed for doc %q (request %s): %v", op, docID, requestID, err)
		return nil, fmt.Errorf("%s %s: read body: %w", op, docID, err)
	}
	if resp.StatusCode == http.StatusConflict {
		log.Printf("gateway: %s rejected for doc %q (request %s): stale version", op, docID, requestID)
		return nil, fmt.Errorf("%s %s: %w", op, docID, ErrVersionConflict)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("gateway: %s failed for doc %q (request %s): HTTP %d", op, docID, requestID, resp.StatusCode)
		return nil, fmt.Errorf("%s %s: HTTP %d", op, docID, resp.StatusCode)
	}
	return body, nil
}

// stringField reads a field that backends send as either a JSON string
// or a number.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
