package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultRefreshInterval is how often a running application renews its session.
const DefaultRefreshInterval = 5 * time.Minute

// Refreshable is anything holding a session that can be renewed: a Store, or
// an API client that renews server side and mirrors the result locally.
type Refreshable interface {
	Refresh(ctx context.Context) (bool, error)
}

// Refresher renews a session on a fixed interval while its owner is alive.
// The schedule is torn down when Stop is called or the Start context ends.
type Refresher struct {
	store    Refreshable
	interval time.Duration
	log      *logrus.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRefresher(store Refreshable, interval time.Duration, log *logrus.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Refresher{store: store, interval: interval, log: log}
}

func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.cron = cron.New()
	r.cron.Schedule(cron.Every(r.interval), cron.FuncJob(r.tick))
	r.cron.Start()
	r.running = true

	go func(ctx context.Context) {
		<-ctx.Done()
		r.Stop()
	}(r.ctx)

	r.log.WithField("interval", r.interval.String()).Debug("session refresher started")
}

// Stop cancels the schedule and waits for an in-flight refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cancel()
	<-r.cron.Stop().Done()
	r.running = false
	r.log.Debug("session refresher stopped")
}

func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) tick() {
	ok, err := r.store.Refresh(r.ctx)
	if err != nil {
		r.log.WithError(err).Warn("session refresh failed")
		return
	}
	if !ok {
		r.log.Debug("no session to refresh")
	}
}
