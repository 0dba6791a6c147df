package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var _ Cache[string] = (*MemoryCache[string])(nil)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache[[]string](time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("models", []string{"llava:latest", "llama3.2:3b"}, 0)
	got, ok := c.Get("models")
	assert.True(t, ok)
	assert.Equal(t, []string{"llava:latest", "llama3.2:3b"}, got)

	c.Delete("models")
	_, ok = c.Get("models")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache[int](30*time.Millisecond, time.Minute)

	c.Set("short", 1, 0)
	c.Set("long", 2, time.Hour)

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok, "default TTL should apply when ttl is 0")
	v, ok := c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestKey(t *testing.T) {
	a := Key("probe", "http://localhost:11434")
	b := Key("probe", "http://localhost:11435")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key("probe", "http://localhost:11434"))
	assert.Contains(t, a, "filesort:v1:")
	// parts are separated, so shifting a boundary changes the key
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}
