package popup

import "sync/atomic"

// live is the controller currently bound to the package-level facade.
// Every facade call is a no-op (or a zero value) while none is bound.
var live atomic.Pointer[Controller]

// Use binds a controller to the package-level facade, replacing any
// previous binding.
func Use(c *Controller) {
	live.Store(c)
}

// Release unbinds the facade if it is still bound to c.
func Release(c *Controller) {
	live.CompareAndSwap(c, nil)
}

// Add registers a popup on the live controller. Returns the empty
// string when no controller is live.
func Add(el Element, opts Options) string {
	c := live.Load()
	if c == nil {
		return ""
	}
	return c.Add(el, opts)
}

// Remove starts the removal state machine on the live controller.
func Remove(id string) {
	if c := live.Load(); c != nil {
		c.Remove(id)
	}
}

// RemoveImmediately deletes a popup on the live controller, reporting
// whether it existed. False when no controller is live.
func RemoveImmediately(id string) bool {
	c := live.Load()
	if c == nil {
		return false
	}
	return c.RemoveImmediately(id)
}

// ResetProperty overwrites a popup property on the live controller.
func ResetProperty(id, key string, value any) {
	if c := live.Load(); c != nil {
		c.ResetProperty(id, key, value)
	}
}

// RemoveAll bulk-removes popups on the live controller.
func RemoveAll(filter Filter) {
	if c := live.Load(); c != nil {
		c.RemoveAll(filter)
	}
}

// IsShow reports whether the live controller shows a matching popup.
func IsShow(filter Filter) bool {
	c := live.Load()
	if c == nil {
		return false
	}
	return c.IsShow(filter)
}
