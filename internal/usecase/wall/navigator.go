package wall

// Navigator tracks the focused carousel position. The focus index is clamped
// to [0, max(0, len-1)] of the store sequence at all times; stepping past
// either boundary is a no-op rather than a wraparound.
type Navigator struct {
	store *Store
	focus int
}

func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

func (n *Navigator) Focus() int {
	n.Clamp()
	return n.focus
}

func (n *Navigator) Next() {
	n.focus++
	n.Clamp()
}

func (n *Navigator) Previous() {
	n.focus--
	n.Clamp()
}

// Select jumps directly to a position, as a pointer click on a rendered
// item does. Out-of-range positions clamp.
func (n *Navigator) Select(index int) {
	n.focus = index
	n.Clamp()
}

// Reset moves focus back to the front, used after a successful submission.
func (n *Navigator) Reset() {
	n.focus = 0
}

// Clamp re-bounds the focus against the current store length. Call after
// any store mutation; an empty store clamps to 0.
func (n *Navigator) Clamp() {
	max := n.store.Len() - 1
	if max < 0 {
		max = 0
	}
	if n.focus > max {
		n.focus = max
	}
	if n.focus < 0 {
		n.focus = 0
	}
}

// Window computes the half-open range of items to render so that focus sits
// as close to the center of a viewport of `visible` items as the boundaries
// allow. This is the scroll-into-view presentation effect, kept as a pure
// calculation so it is testable without a terminal.
func Window(focus int, length int, visible int) (start int, end int) {
	if length <= 0 || visible <= 0 {
		return 0, 0
	}
	if visible >= length {
		return 0, length
	}

	start = focus - visible/2
	if start < 0 {
		start = 0
	}
	if start > length-visible {
		start = length - visible
	}
	return start, start + visible
}
