package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/popui/internal/anim"
	"github.com/jmylchreest/popui/internal/popup"
)

func element(text string) popup.Element {
	return popup.ElementFunc(func(width, height int) string { return text })
}

func TestOverlay_EmptySnapshotReturnsBase(t *testing.T) {
	o := New("236")
	out := o.Render("base view", nil, 80, 24, time.Now())
	assert.Equal(t, "base view", out)
}

func TestOverlay_RendersPopupContent(t *testing.T) {
	o := New("236")
	now := time.Now()

	snap := []popup.RecordView{{
		ID:      "p1",
		Element: element("hello popup"),
	}}

	out := o.Render("base", snap, 80, 24, now)
	assert.Contains(t, out, "hello popup")
	assert.NotEqual(t, "base", out)
}

func TestOverlay_EntranceDelayHidesPopup(t *testing.T) {
	o := New("236")
	now := time.Now()

	snap := []popup.RecordView{{
		ID:        "p1",
		Element:   element("delayed"),
		Animation: anim.Named("fade"),
		Start:     now,
		Delay:     500 * time.Millisecond,
		Duration:  100 * time.Millisecond,
	}}

	// Inside the entrance delay nothing is drawn yet.
	out := o.Render("base", snap, 80, 24, now.Add(10*time.Millisecond))
	assert.Equal(t, "base", out)

	// After delay + duration the popup is fully visible.
	out = o.Render("base", snap, 80, 24, now.Add(time.Second))
	assert.Contains(t, out, "delayed")
}

func TestOverlay_StacksInSnapshotOrder(t *testing.T) {
	o := New("236")

	snap := []popup.RecordView{
		{ID: "low", Element: element("LOW-CONTENT")},
		{ID: "high", Element: element("HIGH-CONTENT")},
	}

	out := o.Render("base", snap, 100, 40, time.Now())
	lowIdx := strings.Index(out, "LOW-CONTENT")
	highIdx := strings.Index(out, "HIGH-CONTENT")
	assert.GreaterOrEqual(t, lowIdx, 0)
	assert.Greater(t, highIdx, lowIdx)
}

func TestOverlay_FadedOutPopupInvisible(t *testing.T) {
	o := New("236")
	now := time.Now()

	// Closing fade at progress 0 of the reversed animation is opacity 1;
	// at the end it reaches 0 and the popup disappears.
	closing := anim.Reverse(anim.Named("fade"))
	snap := []popup.RecordView{{
		ID:        "p1",
		Closing:   true,
		Element:   element("going"),
		Animation: closing,
		Start:     now.Add(-time.Second),
		Duration:  100 * time.Millisecond,
	}}

	out := o.Render("base", snap, 80, 24, now)
	assert.Equal(t, "base", out)
}
