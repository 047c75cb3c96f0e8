package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRefresher_TickExtendsSession(t *testing.T) {
	s, _, clk := newTestStore(t)
	ctx := context.Background()
	token, err := s.Create(ctx, alice)
	require.NoError(t, err)

	r := NewRefresher(s, time.Minute, quietLogger())
	r.ctx = ctx
	clk.Advance(5 * time.Minute)
	r.tick()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, token, got.Token)
	assert.WithinDuration(t, clk.Now().Add(24*time.Hour), got.ExpiresAt, time.Second)
}

func TestRefresher_TickWithoutSession(t *testing.T) {
	s, st, _ := newTestStore(t)
	r := NewRefresher(s, time.Minute, quietLogger())
	r.ctx = context.Background()
	r.tick()
	assert.Zero(t, st.writes)
}

func TestRefresher_RunsOnSchedule(t *testing.T) {
	s, st, _ := newTestStore(t)
	_, err := s.Create(context.Background(), alice)
	require.NoError(t, err)
	before := st.writes

	r := NewRefresher(s, time.Second, quietLogger())
	r.Start(context.Background())
	t.Cleanup(r.Stop)

	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.writes > before
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRefresher_StopsWithContext(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(s, time.Second, quietLogger())
	r.Start(ctx)
	r.Start(ctx)
	assert.True(t, r.Running())

	cancel()
	require.Eventually(t, func() bool { return !r.Running() }, 2*time.Second, 10*time.Millisecond)
	r.Stop()
}

func TestRefresher_DefaultInterval(t *testing.T) {
	r := NewRefresher(nil, 0, nil)
	assert.Equal(t, DefaultRefreshInterval, r.interval)
}
