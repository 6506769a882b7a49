// Package client is a Go admin client for the catalog API. It keeps its
// login proof and failed-save drafts in a clientsession store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blogem/toolshelf/clientsession"
	"github.com/blogem/toolshelf/models"
)

// ErrNotLoggedIn is returned when no valid session is stored
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server
type APIError struct {
	Status     int
	Message    string
	Reason     string
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("server returned %d: %s (%s)", e.Status, e.Message, e.Reason)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap exposes a 429 as *models.RateLimitError
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return &models.RateLimitError{RetryAfter: e.RetryAfter}
	}
	return nil
}

// SaveOutcome tells the caller whether a change is durable or only a local draft
type SaveOutcome struct {
	Durable    bool
	Notice     string
	Reason     string
	RetryAfter int
	Stats      models.CatalogStats
}

// Client talks to a catalog server
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *clientsession.SessionStore
	drafts   *clientsession.DraftStore
}

// New creates a client; httpClient may be nil
func New(baseURL string, kv clientsession.KV, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     httpClient,
		sessions: clientsession.NewSessionStore(kv),
		drafts:   clientsession.NewDraftStore(kv),
	}
}

// Sessions exposes the underlying session store
func (c *Client) Sessions() *clientsession.SessionStore { return c.sessions }

// Drafts exposes the underlying draft store
func (c *Client) Drafts() *clientsession.DraftStore { return c.drafts }

// Login exchanges the passphrase for a server-issued session token. The
// passphrase itself is never stored.
func (c *Client) Login(ctx context.Context, passphrase string) error {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", passphrase, nil, &resp); err != nil {
		return err
	}
	return c.sessions.Login(passphrase, resp.Proof, resp.Token, resp.ExpiresAt)
}

// LoggedIn reports whether a usable session is stored
func (c *Client) LoggedIn() bool {
	_, ok := c.sessions.Current()
	return ok
}

// Logout revokes the server token (best effort) and clears local state
func (c *Client) Logout(ctx context.Context) error {
	record, ok := c.sessions.Current()
	var remoteErr error
	if ok && record.Token != "" {
		remoteErr = c.do(ctx, http.MethodPost, "/api/logout", record.Token, nil, nil)
	}
	if err := c.sessions.Logout(); err != nil {
		return err
	}
	return remoteErr
}

// FetchCatalog returns the published catalog
func (c *Client) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	var catalog models.Catalog
	if err := c.do(ctx, http.MethodGet, "/api/catalog", "", nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// SaveCatalog publishes catalog. Any rejected save keeps the catalog as a
// local draft and returns an outcome saying so alongside the error.
// Authentication failures also clear the local session.
func (c *Client) SaveCatalog(ctx context.Context, catalog *models.Catalog) (*SaveOutcome, error) {
	record, ok := c.sessions.Current()
	if !ok {
		return c.keepDraft(catalog, ErrNotLoggedIn, &SaveOutcome{
			Notice: "Not logged in: changes kept as a local draft",
			Reason: "not-logged-in",
		})
	}

	var resp models.SaveResponse
	err := c.do(ctx, http.MethodPost, "/api/catalog", record.Token, catalog, &resp)
	if err == nil {
		_ = c.drafts.Clear()
		return &SaveOutcome{Durable: true, Notice: "Catalog saved", Stats: resp.Stats}, nil
	}

	outcome := &SaveOutcome{Notice: "Server unavailable: changes kept as a local draft"}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		outcome.Reason = apiErr.Reason
		outcome.RetryAfter = apiErr.RetryAfter
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			_ = c.sessions.Logout()
			outcome.Notice = "Session rejected: log in again, changes kept as a local draft"
		case apiErr.Status == http.StatusTooManyRequests:
			outcome.Notice = fmt.Sprintf("Rate limited: retry in %ds, changes kept as a local draft", apiErr.RetryAfter)
		case apiErr.Status < http.StatusInternalServerError:
			outcome.Notice = "Catalog rejected: fix the errors, changes kept as a local draft"
			if outcome.Reason == "" {
				outcome.Reason = apiErr.Message
			}
		}
	}
	return c.keepDraft(catalog, err, outcome)
}

func (c *Client) keepDraft(catalog *models.Catalog, cause error, outcome *SaveOutcome) (*SaveOutcome, error) {
	if draftErr := c.drafts.Save(catalog); draftErr != nil {
		return nil, errors.Join(cause, draftErr)
	}
	return outcome, cause
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error      string `json:"error"`
			Reason     string `json:"reason"`
			RetryAfter int    `json:"retryAfter"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload)
		return &APIError{
			Status:     resp.StatusCode,
			Message:    payload.Error,
			Reason:     payload.Reason,
			RetryAfter: payload.RetryAfter,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
