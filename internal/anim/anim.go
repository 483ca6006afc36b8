// Package anim provides the keyframe animation model for popups:
// named and explicit keyframe specs, playback direction, keyframe
// reversal for exit transitions, and progress/interpolation helpers.
package anim

import (
	"sort"
	"sync"
	"time"
)

// Prop identifies an animatable property.
type Prop string

const (
	// PropOpacity fades content in and out (0..1).
	PropOpacity Prop = "opacity"
	// PropOffsetY shifts content vertically, in rows. Negative is up.
	PropOffsetY Prop = "offsetY"
	// PropOffsetX shifts content horizontally, in columns.
	PropOffsetX Prop = "offsetX"
	// PropScale scales content (0..1). The terminal renderer treats
	// anything below 1 as a reveal fraction.
	PropScale Prop = "scale"
)

// Direction is the playback direction of an animation.
type Direction int

const (
	// DirectionNormal plays keyframes from offset 0 to 1.
	DirectionNormal Direction = iota
	// DirectionReverse plays keyframes from offset 1 to 0.
	DirectionReverse
)

// Keyframe is a point on the animation timeline. Offset is the
// normalized position in [0, 1].
type Keyframe struct {
	Offset float64
	Props  map[Prop]float64
}

// Spec describes an animation as either a registered name or explicit
// keyframes. A zero Spec means "no animation".
type Spec struct {
	Name   string
	Frames []Keyframe
}

// IsZero reports whether the spec describes no animation.
func (s Spec) IsZero() bool {
	return s.Name == "" && len(s.Frames) == 0
}

// Named returns a spec referring to a registered animation.
func Named(name string) Spec {
	return Spec{Name: name}
}

// FromFrames returns a spec with explicit keyframes.
func FromFrames(frames ...Keyframe) Spec {
	return Spec{Frames: frames}
}

var (
	registryMu sync.RWMutex
	registry   = map[string][]Keyframe{
		"fade": {
			{Offset: 0, Props: map[Prop]float64{PropOpacity: 0}},
			{Offset: 1, Props: map[Prop]float64{PropOpacity: 1}},
		},
		"slide-up": {
			{Offset: 0, Props: map[Prop]float64{PropOffsetY: 6, PropOpacity: 0}},
			{Offset: 1, Props: map[Prop]float64{PropOffsetY: 0, PropOpacity: 1}},
		},
		"slide-down": {
			{Offset: 0, Props: map[Prop]float64{PropOffsetY: -6, PropOpacity: 0}},
			{Offset: 1, Props: map[Prop]float64{PropOffsetY: 0, PropOpacity: 1}},
		},
		"zoom": {
			{Offset: 0, Props: map[Prop]float64{PropScale: 0, PropOpacity: 0}},
			{Offset: 1, Props: map[Prop]float64{PropScale: 1, PropOpacity: 1}},
		},
	}
)

// Register adds or replaces a named animation.
func Register(name string, frames []Keyframe) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = frames
}

// Lookup resolves a registered animation name.
func Lookup(name string) (Spec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	frames, ok := registry[name]
	if !ok {
		return Spec{}, false
	}
	return Spec{Name: name, Frames: frames}, true
}

// Resolve returns the spec's keyframes, resolving a name through the
// registry when no explicit frames are present. Unknown names resolve
// to nil.
func (s Spec) Resolve() []Keyframe {
	if len(s.Frames) > 0 {
		return s.Frames
	}
	if s.Name == "" {
		return nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[s.Name]
}

// Reverse derives the closing form of an animation by mirroring its
// keyframes: frame order is flipped and each offset becomes 1-offset.
// A zero spec reverses to a zero spec.
func Reverse(s Spec) Spec {
	frames := s.Resolve()
	if len(frames) == 0 {
		return Spec{}
	}
	out := make([]Keyframe, len(frames))
	for i := range frames {
		src := frames[len(frames)-1-i]
		out[i] = Keyframe{Offset: 1 - src.Offset, Props: src.Props}
	}
	return Spec{Frames: out}
}

// Progress returns the normalized playback position for an animation
// that started at start with the given delay and duration. The result
// is clamped to [0, 1]; a non-positive duration completes immediately.
func Progress(start time.Time, delay, duration time.Duration, now time.Time) float64 {
	if duration <= 0 {
		return 1
	}
	elapsed := now.Sub(start) - delay
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= duration {
		return 1
	}
	return float64(elapsed) / float64(duration)
}

// At returns the interpolated property values at the given progress,
// honoring the playback direction. Properties missing from a
// surrounding keyframe hold their nearest defined value.
func (s Spec) At(progress float64, dir Direction) map[Prop]float64 {
	frames := s.Resolve()
	if len(frames) == 0 {
		return nil
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	if dir == DirectionReverse {
		progress = 1 - progress
	}

	sorted := append([]Keyframe(nil), frames...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	props := make(map[Prop]float64)
	for _, f := range sorted {
		for p := range f.Props {
			props[p] = 0
		}
	}
	for p := range props {
		props[p] = interpolate(sorted, p, progress)
	}
	return props
}

// interpolate computes the value of one property at progress by linear
// interpolation between the nearest keyframes that define it.
func interpolate(frames []Keyframe, p Prop, progress float64) float64 {
	var (
		prev, next       *Keyframe
		prevOff, nextOff float64
	)
	for i := range frames {
		f := frames[i]
		if _, ok := f.Props[p]; !ok {
			continue
		}
		if f.Offset <= progress {
			prev = &frames[i]
			prevOff = f.Offset
		}
		if f.Offset >= progress && next == nil {
			next = &frames[i]
			nextOff = f.Offset
		}
	}
	switch {
	case prev == nil && next == nil:
		return 0
	case prev == nil:
		return next.Props[p]
	case next == nil:
		return prev.Props[p]
	case nextOff == prevOff:
		return next.Props[p]
	}
	t := (progress - prevOff) / (nextOff - prevOff)
	return prev.Props[p] + (next.Props[p]-prev.Props[p])*t
}
