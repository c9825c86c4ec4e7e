package placement

// History is a linear undo/redo stack of anchor snapshots. Pushing a new
// snapshot discards everything that could be redone. It is not safe for
// concurrent use.
type History struct {
	past    []AnchorMap
	present AnchorMap
	future  []AnchorMap
	limit   int
}

// NewHistory starts a history at initial. At most limit snapshots can be
// undone; a limit below 1 keeps a single step.
func NewHistory(initial AnchorMap, limit int) *History {
	return &History{
		present: initial.Clone(),
		limit:   max(limit, 1),
	}
}

func (h *History) Present() AnchorMap {
	return h.present.Clone()
}

func (h *History) Push(next AnchorMap) {
	h.past = append(h.past, h.present)
	if over := len(h.past) - h.limit; over > 0 {
		h.past = append(h.past[:0:0], h.past[over:]...)
	}
	h.present = next.Clone()
	h.future = nil
}

// Undo steps back one snapshot. It reports false when there is nothing to
// undo.
func (h *History) Undo() (AnchorMap, bool) {
	if len(h.past) == 0 {
		return h.Present(), false
	}

	last := len(h.past) - 1
	h.future = append(h.future, h.present)
	h.present = h.past[last]
	h.past = h.past[:last]
	return h.Present(), true
}

// Redo re-applies the last undone snapshot. It reports false when there is
// nothing to redo.
func (h *History) Redo() (AnchorMap, bool) {
	if len(h.future) == 0 {
		return h.Present(), false
	}

	last := len(h.future) - 1
	h.past = append(h.past, h.present)
	h.present = h.future[last]
	h.future = h.future[:last]
	return h.Present(), true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }
