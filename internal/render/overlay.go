// Package render composes the active popups into a terminal overlay:
// a backdrop mask with the popups stacked over it in z-index order,
// with animation progress applied as visibility, offset, and reveal.
package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/popui/internal/anim"
	"github.com/jmylchreest/popui/internal/popup"
)

// Overlay renders popup snapshots over the host view.
type Overlay struct {
	// MaskColor is the fallback backdrop color when a popup carries
	// none.
	MaskColor string
}

// New creates an overlay renderer.
func New(maskColor string) *Overlay {
	return &Overlay{MaskColor: maskColor}
}

// Render composes the snapshot into a full-screen view. An empty
// snapshot returns the base view unchanged. Popups render bottom to
// top in snapshot (z-index) order; entrance delays keep a popup
// invisible until its animation starts.
func (o *Overlay) Render(base string, snapshot []popup.RecordView, width, height int, now time.Time) string {
	boxes := make([]string, 0, len(snapshot))
	maskOn := false
	maskColor := o.MaskColor

	for _, v := range snapshot {
		box, visible := o.renderPopup(v, width, height, now)
		if !visible {
			continue
		}
		boxes = append(boxes, box)
		if o.maskVisible(v, now) {
			maskOn = true
			if v.MaskColor != "" {
				maskColor = v.MaskColor
			}
		}
	}

	if len(boxes) == 0 {
		return base
	}

	content := lipgloss.JoinVertical(lipgloss.Center, boxes...)
	opts := []lipgloss.WhitespaceOption{}
	if maskOn {
		opts = append(opts, lipgloss.WithWhitespaceBackground(lipgloss.Color(maskColor)))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content, opts...)
}

// renderPopup applies the popup's current animation state to its
// element content. The second return is false while the popup should
// not be drawn at all (entrance delay, fully faded out).
func (o *Overlay) renderPopup(v popup.RecordView, width, height int, now time.Time) (string, bool) {
	content := ""
	if v.Element != nil {
		content = v.Element.View(width, height)
	}

	if v.Animation.IsZero() {
		return PopupBox.Render(content), true
	}

	progress := anim.Progress(v.Start, v.Delay, v.Duration, now)
	if progress <= 0 && v.Delay > 0 && !v.Closing {
		// Still inside the entrance delay.
		return "", false
	}
	props := v.Animation.At(progress, v.Direction)

	if opacity, ok := props[anim.PropOpacity]; ok && opacity < 0.05 {
		return "", false
	}

	style := PopupBox
	if opacity, ok := props[anim.PropOpacity]; ok && opacity < 0.5 {
		style = PopupBoxFaint
	}

	if scale, ok := props[anim.PropScale]; ok && scale < 1 {
		content = reveal(content, scale)
	}

	box := style.Render(content)

	if offsetY, ok := props[anim.PropOffsetY]; ok && offsetY != 0 {
		box = shiftVertical(box, int(offsetY))
	}
	if offsetX, ok := props[anim.PropOffsetX]; ok && offsetX > 0 {
		box = lipgloss.NewStyle().MarginLeft(int(offsetX)).Render(box)
	}

	return box, true
}

// maskVisible reports whether the popup's backdrop mask should be
// drawn right now.
func (o *Overlay) maskVisible(v popup.RecordView, now time.Time) bool {
	if v.MaskAnimation.IsZero() {
		// Non-animatable masks are either fully on or, once the popup
		// is closing, off with it.
		return !v.Closing
	}
	progress := anim.Progress(v.Start, v.MaskDelay, v.MaskDuration, now)
	props := v.MaskAnimation.At(progress, anim.DirectionNormal)
	opacity, ok := props[anim.PropOpacity]
	return !ok || opacity >= 0.5
}

// reveal keeps the center fraction of the content's lines, the
// terminal stand-in for a zoom scale.
func reveal(content string, scale float64) string {
	if scale <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	keep := int(float64(len(lines))*scale + 0.5)
	if keep < 1 {
		keep = 1
	}
	if keep >= len(lines) {
		return content
	}
	start := (len(lines) - keep) / 2
	return strings.Join(lines[start:start+keep], "\n")
}

// shiftVertical pads or trims blank lines to move the box down
// (positive) or up (negative).
func shiftVertical(box string, rows int) string {
	if rows > 0 {
		return strings.Repeat("\n", rows) + box
	}
	lines := strings.Split(box, "\n")
	drop := -rows
	if drop >= len(lines) {
		return ""
	}
	return strings.Join(lines[drop:], "\n")
}
