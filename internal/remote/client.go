// Package remote is the thin HTTP collaborator around the definition
// engine: it fetches and persists definition bundles and resolves gateway
// cluster ids for connections.
//
// The service exposes no version or ETag for a definition, so the usual
// fetch, edit, persist sequence is read-modify-write: two concurrent
// editors of the same item race and the last write wins. The engine cannot
// detect this; callers that need stronger guarantees must serialize
// externally.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agentic-research/flowdef/api"
	"github.com/ohler55/ojg/oj"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound indicates the workspace or item does not exist or is not
	// accessible with the configured token.
	ErrNotFound = errors.New("remote: item not found")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("remote: unauthorized")
)

// APIError is a non-2xx response that maps to no sentinel error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the definition service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a client for the service at baseURL authenticating
// with the given bearer token.
func NewClient(baseURL, token string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log,
	}
}

// FetchDefinition retrieves the current definition bundle for an item.
func (c *Client) FetchDefinition(ctx context.Context, workspaceID, itemID string) (*api.DefinitionBundle, error) {
	url := fmt.Sprintf("%s/workspaces/%s/items/%s/getDefinition", c.baseURL, workspaceID, itemID)
	body, err := c.post(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Definition api.DefinitionBundle `json:"definition"`
	}
	if err := oj.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse definition response: %w", err)
	}
	c.log.Debug("fetched definition", "workspace", workspaceID, "item", itemID, "parts", len(envelope.Definition.Parts))
	return &envelope.Definition, nil
}

// PersistDefinition uploads an edited bundle as the item's new definition.
// Last write wins; no concurrency token exists on this API.
func (c *Client) PersistDefinition(ctx context.Context, workspaceID, itemID string, b *api.DefinitionBundle) error {
	url := fmt.Sprintf("%s/workspaces/%s/items/%s/updateDefinition", c.baseURL, workspaceID, itemID)
	payload, err := oj.Marshal(map[string]any{"definition": b})
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	if _, err := c.post(ctx, url, payload); err != nil {
		return err
	}
	c.log.Debug("persisted definition", "workspace", workspaceID, "item", itemID, "parts", len(b.Parts))
	return nil
}

// ResolveClusterID looks up the gateway cluster bound to a connection.
// Every failure, transport or otherwise, is reported as "": the caller then
// stores the connection in its bare form, which the service accepts.
func (c *Client) ResolveClusterID(ctx context.Context, connectionID string) string {
	url := fmt.Sprintf("%s/connections/%s", c.baseURL, connectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("cluster lookup failed", "connection", connectionID, "error", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("cluster lookup failed", "connection", connectionID, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	var conn struct {
		ClusterID string `json:"clusterId"`
	}
	if err := oj.Unmarshal(body, &conn); err != nil {
		c.log.Warn("cluster lookup returned malformed body", "connection", connectionID, "error", err)
		return ""
	}
	return conn.ClusterID
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
