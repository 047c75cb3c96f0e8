package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Unlocks remembers, per user, the listings already paid for with a view.
// A set expires together with the subscription that paid for it.
type Unlocks struct {
	rdb redis.Cmdable
}

func NewUnlocks(rdb redis.Cmdable) *Unlocks { return &Unlocks{rdb: rdb} }

func unlockKey(userID string) string { return "unlock:" + userID }

func (u *Unlocks) Has(ctx context.Context, userID, listingID string) (bool, error) {
	return u.rdb.SIsMember(ctx, unlockKey(userID), listingID).Result()
}

func (u *Unlocks) Add(ctx context.Context, userID, listingID string, until *time.Time) error {
	key := unlockKey(userID)
	_, err := u.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, key, listingID)
		if until != nil {
			p.ExpireAt(ctx, key, *until)
		}
		return nil
	})
	return err
}

func (u *Unlocks) Reset(ctx context.Context, userID string) error {
	return u.rdb.Del(ctx, unlockKey(userID)).Err()
}
