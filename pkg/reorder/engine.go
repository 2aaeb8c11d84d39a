package reorder

import "github.com/matt-steen/remindlist/pkg/notes"

// targetOwner resolves the note a target belongs to.
func targetOwner(c notes.Collection, over *Target) (int64, bool) {
	switch over.Kind {
	case KindNote:
		if c.NoteIndex(over.NoteID) < 0 {
			return 0, false
		}

		return over.NoteID, true
	case KindItem:
		owner, _, ok := c.Owner(over.ItemID)

		return owner, ok
	}

	return 0, false
}

// Over applies the provisional phase of an item drag: when the pointer is over a different
// note than the one holding the active item, the item is taken out of its owner and inserted
// into the target in a single transition.
//
// Over an item, the insertion index is that item's index, plus one when the active item sat
// at a lower index in its owner than the hovered item does in the target. Over a note's empty
// area the item is appended. When the item already lives in the target note, nothing happens,
// so repeated identical events are harmless.
func Over(c notes.Collection, active Subject, over *Target) (notes.Collection, bool) {
	if over == nil || active.Disabled || active.Kind != KindItem {
		return c, false
	}

	source, activeIdx, ok := c.Owner(active.ItemID)
	if !ok {
		return c, false
	}

	target, ok := targetOwner(c, over)
	if !ok || target == source {
		return c, false
	}

	dest, _ := c.Note(target)
	insertAt := len(dest.Items)

	if over.Kind == KindItem {
		overIdx := dest.ItemIndex(over.ItemID)
		insertAt = overIdx

		if activeIdx < overIdx {
			insertAt++
		}
	}

	out, it, ok := c.TakeItem(source, active.ItemID)
	if !ok {
		return c, false
	}

	out, ok = out.InsertItem(target, insertAt, it)
	if !ok {
		return c, false
	}

	return out, true
}

// End applies the commit phase of a drag that began with the active item owned by origin.
//
// Note drags are a flat reorder of the collection. Item drags are finalized here only when they
// stayed within one note: the item takes the place of the item under the pointer. Moves across
// notes were already carried out by Over, so End leaves them as they are.
func End(c notes.Collection, active Subject, origin int64, over *Target) (notes.Collection, bool) {
	if over == nil || active.Disabled {
		return c, false
	}

	target, ok := targetOwner(c, over)
	if !ok {
		return c, false
	}

	switch active.Kind {
	case KindNote:
		return Notes(c, active.NoteID, target)
	case KindItem:
		if target != origin || over.Kind != KindItem {
			return c, false
		}

		owner, _, ok := c.Owner(active.ItemID)
		if !ok || owner != target {
			return c, false
		}

		return Items(c, target, active.ItemID, over.ItemID)
	}

	return c, false
}
