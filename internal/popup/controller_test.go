package popup

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popui/internal/anim"
)

func testElement(text string) Element {
	return ElementFunc(func(width, height int) string { return text })
}

func keyframeFade() anim.Spec {
	return anim.FromFrames(
		anim.Keyframe{Offset: 0, Props: map[anim.Prop]float64{anim.PropOpacity: 0}},
		anim.Keyframe{Offset: 1, Props: map[anim.Prop]float64{anim.PropOpacity: 1}},
	)
}

func newTestController() *Controller {
	return New(Globals{}, nil)
}

func TestController_Add(t *testing.T) {
	c := newTestController()

	var added int32
	id := c.Add(testElement("hello"), Options{
		ZIndex:  1,
		OnAdded: func() { atomic.AddInt32(&added, 1) },
	})

	require.NotEmpty(t, id)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&added))
}

func TestController_Add_SortsByZIndex(t *testing.T) {
	c := newTestController()

	c.Add(testElement("high"), Options{ZIndex: 30})
	c.Add(testElement("low"), Options{ZIndex: 10})
	c.Add(testElement("mid"), Options{ZIndex: 20})

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 10, snap[0].ZIndex)
	assert.Equal(t, 20, snap[1].ZIndex)
	assert.Equal(t, 30, snap[2].ZIndex)
}

func TestController_Add_OrderIDStrictlyIncreasing(t *testing.T) {
	c := newTestController()

	c.Add(testElement("a"), Options{ZIndex: 1})
	c.Add(testElement("b"), Options{ZIndex: 2})
	c.Add(testElement("c"), Options{ZIndex: 3})

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Less(t, snap[0].OrderID, snap[1].OrderID)
	assert.Less(t, snap[1].OrderID, snap[2].OrderID)
}

func TestController_Add_ZIndexCollisionEvictsAnimated(t *testing.T) {
	c := newTestController()

	first := c.Add(testElement("first"), Options{
		ZIndex:    5,
		Animation: keyframeFade(),
		Duration:  200 * time.Millisecond,
	})
	second := c.Add(testElement("second"), Options{ZIndex: 5, Animation: keyframeFade()})

	// The incumbent transitions to closing before the newcomer's
	// commit; both remain registered until the exit completes.
	assert.Equal(t, 2, c.Count())

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	var firstView, secondView *RecordView
	for i := range snap {
		switch snap[i].ID {
		case first:
			firstView = &snap[i]
		case second:
			secondView = &snap[i]
		}
	}
	require.NotNil(t, firstView)
	require.NotNil(t, secondView)
	assert.True(t, firstView.Closing)
	assert.False(t, secondView.Closing)

	// Newcomer's entrance is delayed by half the evicted duration.
	assert.Equal(t, 100*time.Millisecond, secondView.Delay)

	// Exit completion leaves only the newcomer.
	c.AnimationEnd(first)
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.IsShow(func(r Record) bool { return r.ID == second }))
}

func TestController_Add_ZIndexCollisionEvictsImmediate(t *testing.T) {
	c := newTestController()

	var closed int32
	c.Add(testElement("first"), Options{
		ZIndex:   5,
		OnClosed: func() { atomic.AddInt32(&closed, 1) },
	})
	second := c.Add(testElement("second"), Options{ZIndex: 5})

	// No animation on the incumbent: it is gone by the time Add returns.
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
	assert.True(t, c.IsShow(func(r Record) bool { return r.ID == second }))
}

func TestController_Remove_NoAnimationIsSynchronous(t *testing.T) {
	c := newTestController()

	var closed int32
	id := c.Add(testElement("plain"), Options{
		ZIndex:   1,
		OnClosed: func() { atomic.AddInt32(&closed, 1) },
	})

	c.Remove(id)

	assert.Equal(t, 0, c.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
}

func TestController_Remove_InvisibleIsSynchronous(t *testing.T) {
	c := newTestController()

	id := c.Add(testElement("hidden"), Options{
		ZIndex:    1,
		Hidden:    true,
		Animation: keyframeFade(),
	})

	c.Remove(id)
	assert.Equal(t, 0, c.Count())
}

func TestController_Remove_UnknownIsNoop(t *testing.T) {
	c := newTestController()
	c.Remove("no-such-id")
	assert.Equal(t, 0, c.Count())
}

func TestController_Remove_AlreadyClosingIsNoop(t *testing.T) {
	c := newTestController()

	var closed int32
	id := c.Add(testElement("x"), Options{
		ZIndex:    1,
		Animation: keyframeFade(),
		OnClosed:  func() { atomic.AddInt32(&closed, 1) },
	})

	c.Remove(id)
	c.Remove(id) // second removal hits the closing guard

	assert.Equal(t, 1, c.Count())
	c.AnimationEnd(id)
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
}

func TestController_Remove_DerivesClosingAnimation(t *testing.T) {
	c := newTestController()

	id := c.Add(testElement("x"), Options{
		ZIndex:    1,
		Animation: keyframeFade(),
		Delay:     50 * time.Millisecond,
	})

	c.Remove(id)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Closing)
	// Delay resets on close; the closing animation is the reversed
	// opening one.
	assert.Equal(t, time.Duration(0), snap[0].Delay)
	frames := snap[0].Animation.Resolve()
	require.Len(t, frames, 2)
	assert.Equal(t, float64(0), frames[0].Offset)
	assert.Equal(t, float64(1), frames[0].Props[anim.PropOpacity])
}

func TestController_Remove_NamedAnimationFallbackTimer(t *testing.T) {
	c := newTestController()

	var closed int32
	id := c.Add(testElement("x"), Options{
		ZIndex:    1,
		Animation: anim.Named("fade"),
		Duration:  30 * time.Millisecond,
		OnClosed:  func() { atomic.AddInt32(&closed, 1) },
	})

	c.Remove(id)
	assert.Equal(t, 1, c.Count(), "closing popup stays registered until the timer fires")

	require.Eventually(t, func() bool { return c.Count() == 0 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))

	// The animation-end signal after the timer won is a no-op.
	c.AnimationEnd(id)
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
}

func TestController_RemoveImmediately(t *testing.T) {
	c := newTestController()

	assert.False(t, c.RemoveImmediately("missing"))

	var closedAt int32 = -1
	var id string
	id = c.Add(testElement("x"), Options{
		ZIndex: 1,
		OnClosed: func() {
			// OnClosed observes the already-updated registry.
			if !c.IsShow(func(r Record) bool { return r.ID == id }) {
				atomic.StoreInt32(&closedAt, int32(c.Count()))
			}
		},
	})

	assert.True(t, c.RemoveImmediately(id))
	assert.Equal(t, int32(0), atomic.LoadInt32(&closedAt))

	// Exactly once: a second attempt finds nothing.
	assert.False(t, c.RemoveImmediately(id))
}

func TestController_AnimationEnd_NonClosingIsNoop(t *testing.T) {
	c := newTestController()

	id := c.Add(testElement("x"), Options{ZIndex: 1, Animation: keyframeFade()})
	c.AnimationEnd(id)
	assert.Equal(t, 1, c.Count())
}

func TestController_ResetProperty(t *testing.T) {
	c := newTestController()

	id := c.Add(testElement("x"), Options{ZIndex: 1})

	// Identity and private-marker keys are rejected.
	c.ResetProperty(id, "id", "other")
	c.ResetProperty(id, "_closing", true)
	assert.True(t, c.IsShow(func(r Record) bool { return r.ID == id && !r.Closing() }))

	// Unknown keys and type mismatches are silent no-ops.
	c.ResetProperty(id, "bogus", 1)
	c.ResetProperty(id, "zIndex", "not-an-int")
	assert.True(t, c.IsShow(func(r Record) bool { return r.ZIndex == 1 }))

	// Valid overwrite commits and re-sorts.
	events := c.Subscribe()
	c.ResetProperty(id, "zIndex", 5)
	assert.True(t, c.IsShow(func(r Record) bool { return r.ZIndex == 5 }))

	select {
	case ev := <-events:
		assert.Equal(t, ChangeUpdate, ev.Type)
	default:
		t.Fatal("expected a commit event for the property update")
	}
}

func TestController_ResetProperty_UnknownID(t *testing.T) {
	c := newTestController()
	c.ResetProperty("missing", "zIndex", 5)
	assert.Equal(t, 0, c.Count())
}

func TestController_RemoveAll(t *testing.T) {
	c := newTestController()

	var order []int
	var observed []int
	for i := 0; i < 3; i++ {
		i := i
		c.Add(testElement("x"), Options{
			ZIndex: i,
			OnClosed: func() {
				order = append(order, i)
				observed = append(observed, c.Count())
			},
		})
	}

	c.RemoveAll(nil)

	assert.Equal(t, 0, c.Count())
	// Every callback fired once, in collection order, after the single
	// commit cleared the registry.
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, []int{0, 0, 0}, observed)
}

func TestController_RemoveAll_Filtered(t *testing.T) {
	c := newTestController()

	c.Add(testElement("keep"), Options{ZIndex: 1})
	c.Add(testElement("drop"), Options{ZIndex: 2})
	c.Add(testElement("drop"), Options{ZIndex: 3})

	c.RemoveAll(func(r Record) bool { return r.ZIndex > 1 })

	assert.Equal(t, 1, c.Count())
	assert.True(t, c.IsShow(func(r Record) bool { return r.ZIndex == 1 }))
}

func TestController_IsShow(t *testing.T) {
	c := newTestController()

	assert.False(t, c.IsShow(nil))

	c.Add(testElement("hidden"), Options{ZIndex: 1, Hidden: true})
	assert.False(t, c.IsShow(nil), "invisible popups are ignored")

	c.Add(testElement("shown"), Options{ZIndex: 2})
	assert.True(t, c.IsShow(nil))
	assert.True(t, c.IsShow(func(r Record) bool { return r.ZIndex == 2 }))
	assert.False(t, c.IsShow(func(r Record) bool { return r.ZIndex == 3 }))
}

func TestController_MaskTap(t *testing.T) {
	c := newTestController()

	var closed int32
	id := c.Add(testElement("x"), Options{
		ZIndex:    1,
		AutoClose: true,
		Animation: keyframeFade(),
		OnClosed:  func() { atomic.AddInt32(&closed, 1) },
	})

	// Rapid repeated taps: the first starts closing, the rest hit the
	// closing guard.
	c.MaskTap(id)
	c.MaskTap(id)
	c.MaskTap(id)

	assert.Equal(t, 1, c.Count())
	c.AnimationEnd(id)
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
}

func TestController_MaskTap_NotAutoClose(t *testing.T) {
	c := newTestController()

	id := c.Add(testElement("x"), Options{ZIndex: 1})
	c.MaskTap(id)
	assert.Equal(t, 1, c.Count())
}

func TestController_Subscribe(t *testing.T) {
	c := newTestController()
	events := c.Subscribe()

	id := c.Add(testElement("x"), Options{ZIndex: 1})

	select {
	case ev := <-events:
		assert.Equal(t, ChangeAdd, ev.Type)
		assert.Equal(t, id, ev.ID)
		assert.Equal(t, 1, ev.Count)
	default:
		t.Fatal("expected an add event")
	}
}

func TestController_SetMask(t *testing.T) {
	c := New(Globals{MaskColor: "236"}, nil)

	id := c.Add(testElement("x"), Options{ZIndex: 1})
	c.SetMask("99", true)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
	assert.Equal(t, "99", snap[0].MaskColor)
}

func TestController_SizeAccounting(t *testing.T) {
	c := newTestController()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, c.Add(testElement("x"), Options{ZIndex: i}))
	}
	assert.Equal(t, 5, c.Count())

	c.RemoveImmediately(ids[0])
	c.Remove(ids[1]) // no animation: completes synchronously
	assert.Equal(t, 3, c.Count())
}
