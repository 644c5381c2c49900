package gesture

// History is a fixed-length trailing window of dynamic gesture labels.
// The per-frame rotation classifier is noisy, so the label reported to the
// rest of the system is the most common label in the window rather than the
// most recent one.
type History struct {
	labels []Dynamic
	size   int
}

// NewHistory creates a History holding at most size labels.
// Sizes less than 1 fall back to 1.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{
		labels: make([]Dynamic, 0, size),
		size:   size,
	}
}

// Push appends a label to the window, evicting the oldest when full.
func (h *History) Push(d Dynamic) {
	if len(h.labels) >= h.size {
		copy(h.labels, h.labels[1:])
		h.labels = h.labels[:h.size-1]
	}
	h.labels = append(h.labels, d)
}

// Majority returns the most common label in the window.
// Ties are broken in favor of the label seen most recently.
func (h *History) Majority() Dynamic {
	if len(h.labels) == 0 {
		return DynamicNone
	}

	counts := make(map[Dynamic]int, 3)
	for _, l := range h.labels {
		counts[l]++
	}

	best := DynamicNone
	bestCount := -1
	for i := len(h.labels) - 1; i >= 0; i-- {
		l := h.labels[i]
		if counts[l] > bestCount {
			best = l
			bestCount = counts[l]
		}
	}
	return best
}

// Reset clears the window.
func (h *History) Reset() {
	h.labels = h.labels[:0]
}

// Len returns the number of labels currently in the window.
func (h *History) Len() int {
	return len(h.labels)
}
