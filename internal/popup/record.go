package popup

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/popui/internal/anim"
)

// Element is the user-supplied content of a popup.
type Element interface {
	View(width, height int) string
}

// ElementFunc adapts a plain function to the Element interface.
type ElementFunc func(width, height int) string

// View implements Element.
func (f ElementFunc) View(width, height int) string { return f(width, height) }

// Options configures a popup at creation time. The zero value is a
// visible, non-animated, non-auto-closing popup at z-index 0.
type Options struct {
	ZIndex int
	// Hidden registers the popup without showing it. Hidden popups are
	// skipped by back handling and rendering but stay in the registry.
	Hidden bool

	Animation        anim.Spec
	ClosingAnimation anim.Spec
	Direction        anim.Direction

	Duration     time.Duration
	Delay        time.Duration
	MaskDuration time.Duration
	// MaskAnimation overrides the default mask fade when the mask is
	// animatable.
	MaskAnimation anim.Spec

	// AutoClose dismisses the popup on mask tap or back key.
	AutoClose bool

	OnAdded     func()
	OnClosed    func()
	OnPressBack func(id string) bool
	// OnAnimationEnd fires when the exit animation completes, just
	// before the record is removed.
	OnAnimationEnd func()
}

// Globals carries controller-wide popup defaults, applied by the
// record factory.
type Globals struct {
	MaskColor       string
	MaskAnimatable  bool
	MaskDuration    time.Duration
	DefaultDuration time.Duration
}

// Record is an active popup owned by the controller.
type Record struct {
	ID      string
	ZIndex  int
	OrderID uint64
	Visible bool
	Element Element

	Animation        anim.Spec
	ClosingAnimation anim.Spec
	Direction        anim.Direction

	Duration     time.Duration
	Delay        time.Duration
	MaskDuration time.Duration

	AutoClose bool
	MaskColor string

	OnAdded        func()
	OnClosed       func()
	OnPressBack    func(id string) bool
	OnAnimationEnd func()

	closing        bool
	maskAnimatable bool
	maskAnim       anim.Spec
	maskDelay      time.Duration
	createdAt      time.Time
	closingAt      time.Time
}

// Closing reports whether the exit transition has begun.
func (r *Record) Closing() bool { return r.closing }

// MaskAnimatable reports whether the backdrop mask animates.
func (r *Record) MaskAnimatable() bool { return r.maskAnimatable }

// MaskAnimation returns the current mask animation spec.
func (r *Record) MaskAnimation() anim.Spec { return r.maskAnim }

// MaskDelay returns the current mask animation delay.
func (r *Record) MaskDelay() time.Duration { return r.maskDelay }

// orderCounter issues creation sequence numbers. Strictly increasing
// for the process lifetime, never reused.
var orderCounter atomic.Uint64

func nextOrderID() uint64 { return orderCounter.Add(1) }

// NewID returns a new globally unique popup identifier.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// newRecord builds a popup record from the element, options, and
// controller globals.
func newRecord(el Element, opts Options, g Globals) *Record {
	duration := opts.Duration
	if duration <= 0 {
		duration = g.DefaultDuration
	}
	maskDuration := opts.MaskDuration
	if maskDuration <= 0 {
		maskDuration = g.MaskDuration
	}
	if maskDuration <= 0 {
		maskDuration = duration
	}

	rec := &Record{
		ID:      NewID(),
		ZIndex:  opts.ZIndex,
		OrderID: nextOrderID(),
		Visible: !opts.Hidden,
		Element: el,

		Animation:        opts.Animation,
		ClosingAnimation: opts.ClosingAnimation,
		Direction:        opts.Direction,

		Duration:     duration,
		Delay:        opts.Delay,
		MaskDuration: maskDuration,

		AutoClose: opts.AutoClose,
		MaskColor: g.MaskColor,

		OnAdded:        opts.OnAdded,
		OnClosed:       opts.OnClosed,
		OnPressBack:    opts.OnPressBack,
		OnAnimationEnd: opts.OnAnimationEnd,

		maskAnimatable: g.MaskAnimatable,
		maskDelay:      opts.Delay,
	}

	if rec.maskAnimatable {
		rec.maskAnim = opts.MaskAnimation
		if rec.maskAnim.IsZero() {
			rec.maskAnim = anim.Named("fade")
		}
	}

	return rec
}

// setProperty overwrites a mutable record field addressed by its wire
// name. It returns true when the record changed. Unknown keys and type
// mismatches are silent no-ops; the controller rejects "id" and
// private-marker keys before calling this.
func (r *Record) setProperty(key string, value any) bool {
	switch key {
	case "zIndex":
		if v, ok := value.(int); ok {
			r.ZIndex = v
			return true
		}
	case "visible":
		if v, ok := value.(bool); ok {
			r.Visible = v
			return true
		}
	case "duration":
		if v, ok := value.(time.Duration); ok {
			r.Duration = v
			return true
		}
	case "delay":
		if v, ok := value.(time.Duration); ok {
			r.Delay = v
			return true
		}
	case "maskDuration":
		if v, ok := value.(time.Duration); ok {
			r.MaskDuration = v
			return true
		}
	case "autoClose":
		if v, ok := value.(bool); ok {
			r.AutoClose = v
			return true
		}
	case "animation":
		if v, ok := value.(anim.Spec); ok {
			r.Animation = v
			return true
		}
	case "closingAnimation":
		if v, ok := value.(anim.Spec); ok {
			r.ClosingAnimation = v
			return true
		}
	case "direction":
		if v, ok := value.(anim.Direction); ok {
			r.Direction = v
			return true
		}
	case "onAdded":
		if v, ok := value.(func()); ok {
			r.OnAdded = v
			return true
		}
	case "onClosed":
		if v, ok := value.(func()); ok {
			r.OnClosed = v
			return true
		}
	case "onPressBack":
		if v, ok := value.(func(id string) bool); ok {
			r.OnPressBack = v
			return true
		}
	}
	return false
}
