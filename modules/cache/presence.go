package cache

import (
	"context"
	"time"
)

// presenceTTL is how long a user counts as online after their last
// user-online signal.
const presenceTTL = 2 * time.Minute

type presenceRecord struct {
	LastSeen time.Time `json:"last_seen"`
}

// SetOnline records that a user is online, refreshing the presence TTL.
func (c *Cache) SetOnline(ctx context.Context, phone string) error {
	return c.SetWithTTL(ctx, "presence:"+phone, presenceRecord{LastSeen: time.Now().UTC()}, presenceTTL)
}

// IsOnline reports whether a user's presence key is still live, and when
// they were last seen if so.
func (c *Cache) IsOnline(ctx context.Context, phone string) (bool, time.Time, error) {
	var rec presenceRecord
	found, err := c.Get(ctx, "presence:"+phone, &rec)
	if err != nil || !found {
		return false, time.Time{}, err
	}
	return true, rec.LastSeen, nil
}
