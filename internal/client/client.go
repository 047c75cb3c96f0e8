// Package client is a Go client for the marketplace API. It keeps the signed-in
// session and the device id in a durable session.Storage, so a restarted
// program stays signed in until the session expires.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/session"
)

// deviceKey is where the device id is kept, next to session.Key.
const deviceKey = "estate.device"

var (
	ErrUnauthorized = errors.New("client: not signed in")
	ErrForbidden    = errors.New("client: forbidden")
	ErrNotFound     = errors.New("client: not found")
	ErrUnavailable  = errors.New("client: service unavailable")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status     int
	Message    string
	Details    map[string]string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	}
	return nil
}

type Client struct {
	baseURL  string
	http     *http.Client
	storage  session.Storage
	sessions *session.Store
}

// New returns a client for baseURL (for example http://localhost:8080).
// A nil httpClient uses a client with a 15s timeout.
func New(baseURL string, storage session.Storage, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		storage:  storage,
		sessions: session.NewStore(storage),
	}
}

// Session returns the locally stored session, or nil when signed out or expired.
func (c *Client) Session(ctx context.Context) (*entity.Session, error) {
	return c.sessions.Get(ctx)
}

// DeviceID returns the persisted device id, creating one on first use.
func (c *Client) DeviceID(ctx context.Context) (string, error) {
	raw, err := c.storage.Load(ctx, deviceKey)
	if err == nil {
		var id string
		if json.Unmarshal(raw, &id) == nil && id != "" {
			return id, nil
		}
	} else if !errors.Is(err, session.ErrNotFound) {
		return "", err
	}
	id := uuid.NewString()
	b, _ := json.Marshal(id)
	if err := c.storage.Save(ctx, deviceKey, b, 0); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.signIn(ctx, "/api/auth/register", map[string]string{"name": name, "email": email, "password": password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.signIn(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) LoginFederated(ctx context.Context, assertion string) (*User, error) {
	return c.signIn(ctx, "/api/auth/federated", map[string]string{"assertion": assertion})
}

func (c *Client) signIn(ctx context.Context, path string, body any) (*User, error) {
	var out struct {
		User    User       `json:"user"`
		Session apiSession `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	if err := c.sessions.Put(ctx, out.Session.entity()); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout ends the session on the server and forgets it locally. The local
// copy is removed even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if cErr := c.sessions.Clear(ctx); cErr != nil {
		return cErr
	}
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// Refresh renews the session on the server and stores the new expiry. It
// reports false when there is no session to renew; a session the server
// rejects is dropped locally.
func (c *Client) Refresh(ctx context.Context) (bool, error) {
	cur, err := c.sessions.Get(ctx)
	if err != nil || cur == nil {
		return false, err
	}
	var out apiSession
	err = c.do(ctx, http.MethodPost, "/api/session/refresh", nil, &out)
	if errors.Is(err, ErrUnauthorized) {
		return false, c.sessions.Clear(ctx)
	}
	if err != nil {
		return false, err
	}
	next := out.entity()
	next.Token = cur.Token
	if err := c.sessions.Put(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Plans(ctx context.Context) ([]entity.PlanSpec, error) {
	var plans []entity.PlanSpec
	err := c.do(ctx, http.MethodGet, "/api/plans", nil, &plans)
	return plans, err
}

func (c *Client) Subscribe(ctx context.Context, planID string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/subscriptions", map[string]string{"plan_id": planID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Listings(ctx context.Context, category string) ([]Listing, error) {
	var ls []Listing
	err := c.do(ctx, http.MethodGet, "/api/listings?category="+url.QueryEscape(category), nil, &ls)
	return ls, err
}

func (c *Client) Search(ctx context.Context, q string) ([]Listing, error) {
	var ls []Listing
	err := c.do(ctx, http.MethodGet, "/api/listings/search?q="+url.QueryEscape(q), nil, &ls)
	return ls, err
}

func (c *Client) ViewListing(ctx context.Context, id string) (*ListingView, error) {
	var v ListingView
	if err := c.do(ctx, http.MethodGet, "/api/listings/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// do sends one request with the stored credentials and decodes the data
// field of the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	device, err := c.DeviceID(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("X-Device-ID", device)
	if sess, err := c.sessions.Get(ctx); err == nil && sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		_ = json.Unmarshal(env.Error, &apiErr.Details)
		if s := resp.Header.Get("Retry-After"); s != "" {
			if d, err := time.ParseDuration(s + "s"); err == nil {
				apiErr.RetryAfter = d
			}
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
