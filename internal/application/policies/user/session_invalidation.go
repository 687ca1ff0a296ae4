package policies

import (
	"context"

	"travel-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DestroyUserSessions removes every session of a user: each session:<sid> key and
// the user_sessions:<user_id> index set. except keeps one session alive (the caller's).
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID, except string) {
	if rdb == nil || userID == "" {
		return
	}
	key := middleware.UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		if sid == except {
			continue
		}
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
		rdb.SRem(ctx, key, sid)
	}
}
