package popup

import "sort"

// backEligible reports whether a record may receive the back key.
func backEligible(r *Record) bool {
	return !r.closing && r.Visible
}

// HandleBack intercepts the platform back event. The candidate is the
// most recently added popup that is visible and not closing; closing
// and invisible records sort to the front so they are never selected.
// Returns false when nothing handled the event and it should bubble up
// (for the host, usually: close the screen).
func (c *Controller) HandleBack() bool {
	c.mu.Lock()
	if len(c.records) == 0 {
		c.mu.Unlock()
		return false
	}

	candidates := append([]*Record(nil), c.records...)
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := backEligible(candidates[i]), backEligible(candidates[j])
		if ei != ej {
			return !ei
		}
		if !ei {
			return false
		}
		return candidates[i].OrderID < candidates[j].OrderID
	})

	top := candidates[len(candidates)-1]
	if !backEligible(top) {
		c.mu.Unlock()
		return false
	}

	id := top.ID
	autoClose := top.AutoClose
	onPressBack := top.OnPressBack
	c.mu.Unlock()

	if autoClose {
		c.logger.Debug("back key dismissed popup", "id", id)
		c.Remove(id)
		return true
	}
	if onPressBack != nil {
		return onPressBack(id)
	}
	return false
}
