// Package session keeps the authenticated identity of one device: a record with
// an opaque token and an absolute expiry, persisted in a pluggable Storage.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

const (
	// Key is the well-known storage key the session record lives under.
	Key = "estate.session"
	// DefaultTTL is how long a session stays valid after creation or refresh.
	DefaultTTL = 24 * time.Hour

	tokenBytes = 32
)

// ErrNotFound is returned by Storage implementations when nothing is stored under a key.
var ErrNotFound = errors.New("session: not found")

// Storage is the durable medium for a session record.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL reports the lifetime applied on create and refresh.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create starts a new session for id and returns its token. Any previous
// session in this store is replaced.
func (s *Store) Create(ctx context.Context, id entity.Identity) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	sess := entity.Session{
		ID:        id.ID,
		Email:     id.Email,
		Role:      id.Role,
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}

// Get returns the live session or nil. An expired or unreadable record is
// removed before returning nil. Storage failures are returned as errors and
// must not be read as "logged out".
func (s *Store) Get(ctx context.Context) (*entity.Session, error) {
	raw, err := s.storage.Load(ctx, Key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess entity.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" {
		return nil, s.Clear(ctx)
	}
	if sess.IsExpired(s.now()) {
		return nil, s.Clear(ctx)
	}
	return &sess, nil
}

// Refresh pushes the expiry of a live session to now+TTL, keeping its token.
// It reports whether there was a session to refresh and writes nothing otherwise.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	sess, err := s.Get(ctx)
	if err != nil || sess == nil {
		return false, err
	}
	sess.ExpiresAt = s.now().UTC().Add(s.ttl)
	if err := s.save(ctx, *sess); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the session. Safe to call when none exists.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, Key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Put stores a session issued elsewhere, such as one returned by the API to a client.
func (s *Store) Put(ctx context.Context, sess entity.Session) error {
	if sess.Token == "" {
		return errors.New("session: empty token")
	}
	if sess.IsExpired(s.now()) {
		return s.Clear(ctx)
	}
	return s.save(ctx, sess)
}

func (s *Store) save(ctx context.Context, sess entity.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.storage.Save(ctx, Key, b, sess.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// NewToken returns 32 bytes from crypto/rand, base64url encoded.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
