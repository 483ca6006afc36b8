package popup

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/popui/internal/anim"
)

// DefaultDuration is the fallback popup duration when none is
// configured.
const DefaultDuration = 100 * time.Millisecond

// ChangeType indicates the type of registry change.
type ChangeType int

const (
	// ChangeAdd indicates a popup was registered.
	ChangeAdd ChangeType = iota
	// ChangeClose indicates a popup began its exit transition.
	ChangeClose
	// ChangeRemove indicates a popup left the registry.
	ChangeRemove
	// ChangeUpdate indicates a popup property was rewritten.
	ChangeUpdate
	// ChangeClear indicates a bulk removal.
	ChangeClear
)

// ChangeEvent signals registry commits to subscribers.
type ChangeEvent struct {
	Type  ChangeType
	ID    string
	Count int
}

// Filter selects popups by inspecting a copy of their record.
type Filter func(Record) bool

// Controller owns the popup registry. All mutation goes through its
// methods; lifecycle callbacks always run after the commit, outside the
// lock.
type Controller struct {
	mu      sync.Mutex
	logger  *slog.Logger
	globals Globals

	// records stays sorted by ZIndex ascending, ties in insertion order.
	records []*Record
	index   map[string]*Record

	subs   []chan ChangeEvent
	closed bool

	now func() time.Time
}

// New creates a controller with the given global popup defaults.
func New(g Globals, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if g.DefaultDuration <= 0 {
		g.DefaultDuration = DefaultDuration
	}
	return &Controller{
		logger:  logger,
		globals: g,
		index:   make(map[string]*Record),
		now:     time.Now,
	}
}

// Subscribe returns a channel that receives a ChangeEvent for every
// commit. Events are dropped rather than blocking a slow receiver.
func (c *Controller) Subscribe() <-chan ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan ChangeEvent, 16)
	c.subs = append(c.subs, ch)
	return ch
}

// Close closes all subscriber channels. The controller stays usable
// but no longer notifies.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

func (c *Controller) notifyLocked(ev ChangeEvent) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Add registers a new popup and returns its id. A non-closing popup
// already holding the same z-index is evicted: it begins closing
// without its own commit, and the newcomer's entrance (popup and mask)
// is delayed by half the evicted popup's duration so the handover
// reads as sequential.
func (c *Controller) Add(el Element, opts Options) string {
	c.mu.Lock()
	rec := newRecord(el, opts, c.globals)

	var after []func()
	for _, existing := range c.records {
		if !existing.closing && existing.ZIndex == rec.ZIndex {
			after = c.beginCloseLocked(existing, false)
			rec.Delay = existing.Duration / 2
			rec.maskDelay = existing.Duration / 2
			break
		}
	}

	rec.createdAt = c.now()
	c.records = append(c.records, rec)
	c.index[rec.ID] = rec
	if len(c.records) > 1 {
		c.sortLocked()
	}
	c.notifyLocked(ChangeEvent{Type: ChangeAdd, ID: rec.ID, Count: len(c.records)})
	c.logger.Debug("popup added", "id", rec.ID, "z_index", rec.ZIndex, "order_id", rec.OrderID)
	c.mu.Unlock()

	for _, f := range after {
		f()
	}
	if rec.OnAdded != nil {
		rec.OnAdded()
	}
	return rec.ID
}

// sortLocked re-sorts the registry by z-index. Stable, so equal
// z-indexes keep their prior relative order.
func (c *Controller) sortLocked() {
	sort.SliceStable(c.records, func(i, j int) bool {
		return c.records[i].ZIndex < c.records[j].ZIndex
	})
}

// Remove starts the removal state machine for a popup and commits the
// transition. Unknown or already-closing ids are no-ops.
func (c *Controller) Remove(id string) {
	c.remove(id, true)
}

// remove is Remove with control over the commit. forceUpdate=false
// records the transition but leaves the commit to the caller's
// subsequent one (the z-index eviction path).
func (c *Controller) remove(id string, forceUpdate bool) {
	c.mu.Lock()
	rec, ok := c.index[id]
	if !ok || rec.closing {
		c.mu.Unlock()
		c.logger.Debug("remove ignored", "id", id, "known", ok)
		return
	}
	after := c.beginCloseLocked(rec, forceUpdate)
	c.mu.Unlock()

	for _, f := range after {
		f()
	}
}

// beginCloseLocked transitions a record toward removal. Records with no
// animation, or that are not visible, are removed immediately with no
// observable closing state. Otherwise the record enters closing:
// entrance delay is cleared, the mask animation is reversed with its
// delay recomputed to end alongside the popup, and completion is armed
// through either a fallback timer (named animations, where the
// animation-end signal is unreliable) or the animation-end signal
// (keyframe animations).
//
// Returned callbacks must run after the lock is released.
func (c *Controller) beginCloseLocked(rec *Record, commit bool) []func() {
	if rec.closing {
		return nil
	}

	if rec.Animation.IsZero() || !rec.Visible {
		cb, _ := c.deleteLocked(rec.ID)
		if commit {
			c.notifyLocked(ChangeEvent{Type: ChangeRemove, ID: rec.ID, Count: len(c.records)})
		}
		c.logger.Debug("popup removed without transition", "id", rec.ID)
		if cb != nil {
			return []func(){cb}
		}
		return nil
	}

	rec.closing = true
	rec.Delay = 0
	rec.closingAt = c.now()

	if rec.maskAnimatable && !rec.maskAnim.IsZero() {
		rec.maskAnim = anim.Reverse(rec.maskAnim)
		rec.maskDelay = rec.Duration - rec.MaskDuration
	}

	if rec.Animation.Name != "" && rec.ClosingAnimation.IsZero() {
		// Named animations replay in reverse. The animation-end signal
		// is not reliable in this mode, so removal is scheduled on a
		// fallback timer as well; whichever fires first wins and the
		// other finds the id gone.
		rec.Direction = anim.DirectionReverse
		rec.ClosingAnimation = anim.Named(rec.Animation.Name)
		d := rec.Duration
		if d <= 0 {
			d = DefaultDuration
		}
		id := rec.ID
		time.AfterFunc(d, func() { c.RemoveImmediately(id) })
	} else if rec.ClosingAnimation.IsZero() {
		rec.ClosingAnimation = anim.Reverse(rec.Animation)
	}

	if commit {
		c.notifyLocked(ChangeEvent{Type: ChangeClose, ID: rec.ID, Count: len(c.records)})
	}
	c.logger.Debug("popup closing", "id", rec.ID, "duration", rec.Duration)
	return nil
}

// deleteLocked unregisters a record and returns its OnClosed callback.
func (c *Controller) deleteLocked(id string) (func(), bool) {
	rec, ok := c.index[id]
	if !ok {
		return nil, false
	}
	delete(c.index, id)
	for i := range c.records {
		if c.records[i] == rec {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	return rec.OnClosed, true
}

// RemoveImmediately deletes a popup regardless of state and reports
// whether it existed. OnClosed fires exactly once, after the registry
// no longer contains the id. Safe to call from the fallback timer and
// the animation-end signal concurrently; the loser is a no-op.
func (c *Controller) RemoveImmediately(id string) bool {
	c.mu.Lock()
	cb, ok := c.deleteLocked(id)
	if ok {
		c.notifyLocked(ChangeEvent{Type: ChangeRemove, ID: id, Count: len(c.records)})
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	c.logger.Debug("popup removed", "id", id)
	if cb != nil {
		cb()
	}
	return true
}

// AnimationEnd is the completion signal from the renderer's clock. For
// a closing popup it fires the record's OnAnimationEnd hook and then
// removes it. Non-closing or unknown ids are no-ops.
func (c *Controller) AnimationEnd(id string) {
	c.mu.Lock()
	rec, ok := c.index[id]
	closing := ok && rec.closing
	var hook func()
	if closing {
		hook = rec.OnAnimationEnd
	}
	c.mu.Unlock()

	if !closing {
		return
	}
	if hook != nil {
		hook()
	}
	c.RemoveImmediately(id)
}

// ResetProperty overwrites a single popup property and commits.
// The identity key, private-marker keys, unknown keys, and type
// mismatches are silently rejected.
func (c *Controller) ResetProperty(id, key string, value any) {
	if key == "id" || strings.HasPrefix(key, "_") {
		c.logger.Debug("reset rejected", "id", id, "key", key)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.index[id]
	if !ok {
		return
	}
	if !rec.setProperty(key, value) {
		c.logger.Debug("reset ignored", "id", id, "key", key)
		return
	}
	if key == "zIndex" && len(c.records) > 1 {
		c.sortLocked()
	}
	c.notifyLocked(ChangeEvent{Type: ChangeUpdate, ID: id, Count: len(c.records)})
}

// RemoveAll bulk-removes popups, bypassing the closing state machine.
// A nil filter clears the registry. With a filter, popups for which it
// returns true are removed. OnClosed callbacks are collected in
// registry order and invoked after the single commit, so they observe
// the already-updated registry.
func (c *Controller) RemoveAll(filter Filter) {
	c.mu.Lock()
	var kept []*Record
	var callbacks []func()
	for _, rec := range c.records {
		if filter != nil && !filter(*rec) {
			kept = append(kept, rec)
			continue
		}
		delete(c.index, rec.ID)
		if rec.OnClosed != nil {
			callbacks = append(callbacks, rec.OnClosed)
		}
	}
	removed := len(c.records) - len(kept)
	c.records = kept
	c.notifyLocked(ChangeEvent{Type: ChangeClear, Count: len(c.records)})
	c.mu.Unlock()

	c.logger.Debug("popups cleared", "removed", removed, "remaining", len(kept))
	for _, cb := range callbacks {
		cb()
	}
}

// IsShow reports whether any visible popup satisfies the filter. A nil
// filter matches every visible popup.
func (c *Controller) IsShow(filter Filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		if !rec.Visible {
			continue
		}
		if filter == nil || filter(*rec) {
			return true
		}
	}
	return false
}

// MaskTap handles a tap on a popup's backdrop: removal through the
// standard path, only for auto-closing popups not already closing.
// Idempotent under rapid repeated taps.
func (c *Controller) MaskTap(id string) {
	c.mu.Lock()
	rec, ok := c.index[id]
	dismiss := ok && rec.AutoClose && !rec.closing
	c.mu.Unlock()

	if dismiss {
		c.Remove(id)
	}
}

// Count returns the number of registered popups, closing ones
// included.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// SetMask re-applies the global mask configuration; existing popups
// pick up the new color, future popups the animatability too.
func (c *Controller) SetMask(color string, animatable bool) {
	c.mu.Lock()
	c.globals.MaskColor = color
	c.globals.MaskAnimatable = animatable
	for _, rec := range c.records {
		rec.MaskColor = color
	}
	c.notifyLocked(ChangeEvent{Type: ChangeUpdate, Count: len(c.records)})
	c.mu.Unlock()
}

// RecordView is a copy-on-write snapshot entry for rendering. Start,
// Delay, Duration, Animation, and Direction describe the transition
// currently in effect (entrance, or exit once closing).
type RecordView struct {
	ID      string
	ZIndex  int
	OrderID uint64
	Closing bool
	Element Element

	Animation anim.Spec
	Direction anim.Direction
	Start     time.Time
	Delay     time.Duration
	Duration  time.Duration

	MaskColor     string
	MaskAnimation anim.Spec
	MaskDelay     time.Duration
	MaskDuration  time.Duration

	AutoClose bool
}

// Snapshot returns the visible popups in z-index order as detached
// views. Consumers never observe partial updates.
func (c *Controller) Snapshot() []RecordView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]RecordView, 0, len(c.records))
	for _, rec := range c.records {
		if !rec.Visible {
			continue
		}
		v := RecordView{
			ID:      rec.ID,
			ZIndex:  rec.ZIndex,
			OrderID: rec.OrderID,
			Closing: rec.closing,
			Element: rec.Element,

			Animation: rec.Animation,
			Direction: rec.Direction,
			Start:     rec.createdAt,
			Delay:     rec.Delay,
			Duration:  rec.Duration,

			MaskColor:     rec.MaskColor,
			MaskAnimation: rec.maskAnim,
			MaskDelay:     rec.maskDelay,
			MaskDuration:  rec.MaskDuration,

			AutoClose: rec.AutoClose,
		}
		if rec.closing {
			v.Animation = rec.ClosingAnimation
			v.Start = rec.closingAt
		}
		views = append(views, v)
	}
	return views
}
