package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQueryCacheKeyIsOrderIndependent(t *testing.T) {
	a := GenerateQueryCacheKey("feed", map[string]string{"city": "بغداد", "page": "1"})
	b := GenerateQueryCacheKey("feed", map[string]string{"page": "1", "city": "بغداد"})
	c := GenerateQueryCacheKey("feed", map[string]string{"page": "2", "city": "بغداد"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "feed:"))
}

func TestHelpersWithoutRedis(t *testing.T) {
	RedisClient = nil
	ctx := context.Background()

	require.NoError(t, SetCached(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := GetCached(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, Invalidate(ctx, "k"))
}
