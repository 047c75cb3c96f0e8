// Package redisstore keeps short-lived auth and entitlement state in Redis.
package redisstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

// Lockout counts failed logins per email in a fixed window. Redis errors never
// block a login; they are logged and the attempt is let through.
type Lockout struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
	log    *logrus.Logger
}

func NewLockout(rdb redis.Cmdable, max int, window time.Duration, log *logrus.Logger) *Lockout {
	return &Lockout{rdb: rdb, max: max, window: window, log: log}
}

func failKey(email string) string {
	return "auth:fail:" + strings.ToLower(strings.TrimSpace(email))
}

// Check fails with *domain.AccountLockedError while email is locked.
func (l *Lockout) Check(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	key := failKey(email)
	v, err := l.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		l.warn(err, "lockout check failed")
		return nil
	}
	n, _ := strconv.Atoi(v)
	if n < l.max {
		return nil
	}
	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return &domain.AccountLockedError{Email: email, RetryAfter: ttl}
}

// RecordFailure counts one failed attempt and returns the lock error when it
// was the last one allowed.
func (l *Lockout) RecordFailure(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	n, ttl, err := helpers.IncrWithExpiry(ctx, l.rdb, failKey(email), l.window)
	if err != nil {
		l.warn(err, "lockout record failed")
		return nil
	}
	if n >= l.max {
		if ttl <= 0 {
			ttl = l.window
		}
		return &domain.AccountLockedError{Email: email, RetryAfter: ttl}
	}
	return nil
}

func (l *Lockout) Reset(ctx context.Context, email string) error {
	if l.disabled() {
		return nil
	}
	return helpers.RedisDel(ctx, l.rdb, failKey(email))
}

func (l *Lockout) disabled() bool {
	return l == nil || l.rdb == nil || l.max <= 0 || l.window <= 0
}

func (l *Lockout) warn(err error, msg string) {
	if l.log != nil {
		l.log.WithError(err).Warn(msg)
	}
}
