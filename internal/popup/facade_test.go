package popup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade_NoLiveController(t *testing.T) {
	live.Store(nil)

	assert.Empty(t, Add(testElement("x"), Options{}))
	assert.False(t, RemoveImmediately("any"))
	assert.False(t, IsShow(nil))

	// Pure no-ops; nothing to assert beyond not panicking.
	Remove("any")
	ResetProperty("any", "zIndex", 1)
	RemoveAll(nil)
}

func TestFacade_Bound(t *testing.T) {
	c := newTestController()
	Use(c)
	defer Release(c)

	id := Add(testElement("x"), Options{ZIndex: 1})
	require.NotEmpty(t, id)
	assert.True(t, IsShow(nil))

	ResetProperty(id, "zIndex", 7)
	assert.True(t, IsShow(func(r Record) bool { return r.ZIndex == 7 }))

	assert.True(t, RemoveImmediately(id))
	assert.False(t, IsShow(nil))

	Add(testElement("y"), Options{ZIndex: 2})
	RemoveAll(nil)
	assert.Equal(t, 0, c.Count())
}

func TestFacade_ReleaseOnlyUnbindsSame(t *testing.T) {
	a := newTestController()
	b := newTestController()

	Use(a)
	Release(b) // wrong instance: binding stays
	assert.NotEmpty(t, Add(testElement("x"), Options{}))

	Release(a)
	assert.Empty(t, Add(testElement("x"), Options{}))
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
