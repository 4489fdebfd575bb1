package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	id "member-gateway/pkg/domain"
)

// DefaultRecentCacheTTL keeps just-registered emails visible to the guard for
// a few minutes, long enough to cover a double-submitted form.
const DefaultRecentCacheTTL = 10 * time.Minute

// RedisRecentCache implements RecentCache on Redis. All failures degrade to a
// cache miss: the guard is advisory, so the cache must never block the
// workflow.
type RedisRecentCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisRecentCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisRecentCache {
	if ttl <= 0 {
		ttl = DefaultRecentCacheTTL
	}
	return &RedisRecentCache{client: client, ttl: ttl, logger: logger}
}

func recentKey(orgID id.OrgID, email string) string {
	return fmt.Sprintf("recent_reg:%s:%s", orgID.String(), strings.ToLower(email))
}

func (c *RedisRecentCache) Get(ctx context.Context, orgID id.OrgID, email string) (string, bool) {
	memberNumber, err := c.client.Get(ctx, recentKey(orgID, email)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "recent-registration cache read failed",
				"error", err,
			)
		}
		return "", false
	}
	return memberNumber, true
}

func (c *RedisRecentCache) Set(ctx context.Context, orgID id.OrgID, email, memberNumber string) {
	if err := c.client.Set(ctx, recentKey(orgID, email), memberNumber, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "recent-registration cache write failed",
			"error", err,
		)
	}
}
