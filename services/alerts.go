package services

import "sync"

// AlertTracker latches low-stock alerts per product: one alert per downward
// threshold crossing, re-armed once a stock observation comes back above the
// threshold.
type AlertTracker struct {
	mu               sync.Mutex
	active           map[string]bool
	defaultThreshold int
}

// NewAlertTracker builds a tracker; defaultThreshold applies to products
// without their own reorder level.
func NewAlertTracker(defaultThreshold int) *AlertTracker {
	return &AlertTracker{active: make(map[string]bool), defaultThreshold: defaultThreshold}
}

// Observe records a stock observation and reports whether a low-stock alert
// should fire for it.
func (t *AlertTracker) Observe(productID string, qty, threshold int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if threshold <= 0 {
		threshold = t.defaultThreshold
	}

	if qty <= threshold {
		if t.active[productID] {
			return false
		}
		t.active[productID] = true
		return true
	}

	delete(t.active, productID)
	return false
}
