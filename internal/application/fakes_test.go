package application

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/estate-marketplace/internal/session"
)

const testIterations = 1000

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(session.NewFileStorage(filepath.Join(t.TempDir(), "session.json")))
}

// seedUser stores u and returns the stored copy.
func seedUser(t *testing.T, users *memory.UserRepository, u entity.User) *entity.User {
	t.Helper()
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	require.NoError(t, users.Create(context.Background(), &u))
	out, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return out
}

type fakeGuard struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	checkErr error
}

func newFakeGuard(max int) *fakeGuard { return &fakeGuard{max: max, failures: map[string]int{}} }

func (g *fakeGuard) Check(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.checkErr != nil {
		return g.checkErr
	}
	if g.failures[email] >= g.max {
		return &domain.AccountLockedError{Email: email, RetryAfter: time.Minute}
	}
	return nil
}

func (g *fakeGuard) RecordFailure(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[email]++
	if g.failures[email] >= g.max {
		return &domain.AccountLockedError{Email: email, RetryAfter: time.Minute}
	}
	return nil
}

func (g *fakeGuard) Reset(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, email)
	return nil
}

type fakeLedger struct {
	mu     sync.Mutex
	sets   map[string]map[string]bool
	resets int
}

func newFakeLedger() *fakeLedger { return &fakeLedger{sets: map[string]map[string]bool{}} }

func (l *fakeLedger) Has(_ context.Context, userID, listingID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sets[userID][listingID], nil
}

func (l *fakeLedger) Add(_ context.Context, userID, listingID string, _ *time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sets[userID] == nil {
		l.sets[userID] = map[string]bool{}
	}
	l.sets[userID][listingID] = true
	return nil
}

func (l *fakeLedger) Reset(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
	delete(l.sets, userID)
	return nil
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Welcome(ctx context.Context, u entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockNotifier) PlanActivated(ctx context.Context, u entity.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

type stubSigner struct{ err error }

func (s stubSigner) SignedURL(_ context.Context, object string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.test/" + object, nil
}
