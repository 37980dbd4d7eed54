package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, zerolog.Nop()), server
}

func TestCacheGetSetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	require.False(t, ok)

	c.Set(ctx, "greeting", "hello", TTLShort)
	value, ok := c.Get(ctx, "greeting")
	require.True(t, ok)
	require.Equal(t, "hello", value)
	require.True(t, c.Exists(ctx, "greeting"))

	c.Del(ctx, "greeting")
	require.False(t, c.Exists(ctx, "greeting"))
}

func TestCacheJSONAndTTL(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c.SetJSON(ctx, Course(7), payload{Name: "Go", Count: 3}, TTLMedium)

	var got payload
	require.True(t, c.GetJSON(ctx, Course(7), &got))
	require.Equal(t, payload{Name: "Go", Count: 3}, got)
	require.Equal(t, TTLMedium, c.TTL(ctx, Course(7)))

	server.FastForward(TTLMedium + time.Second)
	require.False(t, c.GetJSON(ctx, Course(7), &got))
}

func TestCacheDiscardsCorruptJSON(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, server.Set("course:1", "{not-json"))

	var dest map[string]interface{}
	require.False(t, c.GetJSON(ctx, Course(1), &dest))
	require.False(t, server.Exists("course:1"))
}

func TestCacheDelPattern(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, CourseList("page=1"), "a", TTLShort)
	c.Set(ctx, CourseList("page=2"), "b", TTLShort)
	c.Set(ctx, KeyCategoriesAll, "c", TTLShort)

	require.Equal(t, 2, c.DelPattern(ctx, "courses:list:*"))
	require.True(t, server.Exists(KeyCategoriesAll))
}

func TestCacheIncrAndExpire(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.EqualValues(t, 1, c.Incr(ctx, "counter"))
	require.EqualValues(t, 2, c.Incr(ctx, "counter"))
	require.True(t, c.Expire(ctx, "counter", TTLLong))
	require.Equal(t, TTLLong, c.TTL(ctx, "counter"))
	require.False(t, c.Expire(ctx, "absent", TTLLong))
}

func TestCacheFailsOpen(t *testing.T) {
	ctx := context.Background()

	disabled := New(nil, zerolog.Nop())
	require.False(t, disabled.Enabled())
	disabled.Set(ctx, "k", "v", TTLShort)
	_, ok := disabled.Get(ctx, "k")
	require.False(t, ok)
	require.Zero(t, disabled.Incr(ctx, "k"))
	require.Zero(t, disabled.DelPattern(ctx, "*"))

	c, server := newTestCache(t)
	server.Close()
	c.Set(ctx, "k", "v", TTLShort)
	_, ok = c.Get(ctx, "k")
	require.False(t, ok)
	require.False(t, c.Exists(ctx, "k"))
}

func TestRemember(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"go", "rust"}, nil
	}

	value, hit, err := Remember(ctx, c, KeyCategoriesAll, TTLLong, load)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, []string{"go", "rust"}, value)

	value, hit, err = Remember(ctx, c, KeyCategoriesAll, TTLLong, load)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []string{"go", "rust"}, value)
	require.Equal(t, 1, calls)
}

func TestInvalidateStudent(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{StudentDashboard(3), StudentEnrollments(3), StudentPayments(3), StudentDashboard(4)} {
		c.Set(ctx, key, "x", TTLShort)
	}

	c.InvalidateStudent(ctx, 3)
	require.False(t, server.Exists("dashboard:student:3"))
	require.False(t, server.Exists("student:3:enrollments"))
	require.False(t, server.Exists("student:3:payments"))
	require.True(t, server.Exists("dashboard:student:4"))
}

func TestInvalidateCourse(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, Course(9), "x", TTLShort)
	c.Set(ctx, CourseStats(9), "x", TTLShort)
	c.Set(ctx, CourseList("level=beginner"), "x", TTLShort)
	c.Set(ctx, SearchSuggestions("Go", 5), "x", TTLShort)

	c.InvalidateCourse(ctx, 9)
	require.Empty(t, server.Keys())
}

func TestKeyBuilders(t *testing.T) {
	require.Equal(t, "dashboard:teacher:2", TeacherDashboard(2))
	require.Equal(t, "course:5:stats", CourseStats(5))
	require.Equal(t, "search:suggestions:golang:5", SearchSuggestions("  GoLang ", 5))
	require.Equal(t, "session:abc:revoked", SessionRevoked("abc"))
	require.Equal(t, CourseList("a=1"), CourseList("a=1"))
	require.NotEqual(t, CourseList("a=1"), CourseList("a=2"))
}
