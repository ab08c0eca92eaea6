package revocation

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Denylist is a best-effort cache of revoked token issuance ids. The
// authoritative revocation check lives in the backend; the gateway only
// consults the cache to short-circuit obviously dead sessions, so every
// cache error fails open.
type Denylist struct {
	client *goredis.Client
	prefix string
}

func NewDenylist(client *goredis.Client) *Denylist {
	return &Denylist{
		client: client,
		prefix: "revoked:",
	}
}

func (d *Denylist) key(tokenID string) string {
	return d.prefix + tokenID
}

// Revoked reports whether the token id is known to be revoked. Unknown
// ids and cache failures both read as not revoked.
func (d *Denylist) Revoked(ctx context.Context, tokenID string) bool {
	if d == nil || tokenID == "" {
		return false
	}

	_, err := d.client.Get(ctx, d.key(tokenID)).Result()
	if err == goredis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("revocation lookup failed", "error", err)
		return false
	}
	return true
}

// Revoke records a token id until its natural expiry. The backend
// publishes these when a logout-all invalidates outstanding tokens.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d == nil || tokenID == "" || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(tokenID), "1", ttl).Err()
}
