package policies

import (
	"context"
	"testing"

	"travel-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestroyUserSessions_KeepsExcept(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	for _, sid := range []string{"s1", "s2", "keep"} {
		require.NoError(t, rdb.Set(ctx, middleware.SessionRedisPrefix+sid, "{}", 0).Err())
		require.NoError(t, rdb.SAdd(ctx, middleware.UserSessionsPrefix+"u1", sid).Err())
	}

	DestroyUserSessions(ctx, rdb, "u1", "keep")

	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+"s1"))
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+"s2"))
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+"keep"))
	members, err := rdb.SMembers(ctx, middleware.UserSessionsPrefix+"u1").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, members)
}
