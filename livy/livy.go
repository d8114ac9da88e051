// Package livy speaks the Livy v1 REST API behind a Component Gateway URL.
package livy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// requestedBy satisfies Livy's CSRF filter on mutating requests.
const requestedBy = "dataproc-bridge"

const sessionPageSize = 100

// Client issues requests against one gateway base URL. The HTTP client is
// expected to come from auth.NewClient so every request carries a bearer
// token.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

// APIError is a non-2xx gateway response, surfaced unchanged.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("livy: unexpected status %d: %s", e.Status, e.Body)
}

type sessionsPage struct {
	From     int       `json:"from"`
	Total    int       `json:"total"`
	Sessions []Session `json:"sessions"`
}

// ListSessions pages through every session the gateway knows about.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var all []Session
	from := 0
	for {
		var page sessionsPage
		path := fmt.Sprintf("/sessions?from=%d&size=%d", from, sessionPageSize)
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Sessions...)
		from += len(page.Sessions)
		if len(page.Sessions) == 0 || from >= page.Total {
			return all, nil
		}
	}
}

// CreateSession asks the gateway to start a session of the given kind:
// spark, pyspark, sparkr or sql.
func (c *Client) CreateSession(ctx context.Context, kind string) (*Session, error) {
	log.Debug().Str("kind", kind).Msg("creating livy session")
	var session Session
	if err := c.do(ctx, http.MethodPost, "/sessions", map[string]string{"kind": kind}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetSession(ctx context.Context, id int) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sessions/%d", id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/sessions/%d", id), nil, nil)
}

// WaitSession polls until the session leaves its starting states. The
// returned session may still be dead or errored; callers check State.
func (c *Client) WaitSession(ctx context.Context, id int, interval time.Duration) (*Session, error) {
	for {
		session, err := c.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if session.State != SessionStarting && session.State != SessionNotStarted {
			return session, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// RunStatement submits code to a session and returns the queued statement.
func (c *Client) RunStatement(ctx context.Context, sessionID int, code string) (*Statement, error) {
	var statement Statement
	path := fmt.Sprintf("/sessions/%d/statements", sessionID)
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"code": code}, &statement); err != nil {
		return nil, err
	}
	return &statement, nil
}

func (c *Client) GetStatement(ctx context.Context, sessionID, statementID int) (*Statement, error) {
	var statement Statement
	path := fmt.Sprintf("/sessions/%d/statements/%d", sessionID, statementID)
	if err := c.do(ctx, http.MethodGet, path, nil, &statement); err != nil {
		return nil, err
	}
	return &statement, nil
}

// WaitStatement polls until the statement finishes, errors or is cancelled.
func (c *Client) WaitStatement(ctx context.Context, sessionID, statementID int, interval time.Duration) (*Statement, error) {
	for {
		statement, err := c.GetStatement(ctx, sessionID, statementID)
		if err != nil {
			return nil, err
		}
		if statement.State != StatementWaiting && statement.State != StatementRunning {
			return statement, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Requested-By", requestedBy)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
