package reorder

import "github.com/matt-steen/remindlist/pkg/notes"

// Move returns a copy of s with the element at from removed and reinserted at to, shifting the
// elements in between by one. Out of range indexes return an unchanged copy.
func Move[T any](s []T, from, to int) []T {
	out := make([]T, len(s))
	copy(out, s)

	if from == to || from < 0 || to < 0 || from >= len(s) || to >= len(s) {
		return out
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}

	out[to] = moved

	return out
}

// Flat moves the element keyed src to the position of the element keyed dst. It reports false,
// and returns s unchanged, when the keys are equal or either is absent.
func Flat[T any, K comparable](s []T, key func(T) K, src, dst K) ([]T, bool) {
	if src == dst {
		return s, false
	}

	from, to := -1, -1

	for i := range s {
		switch key(s[i]) {
		case src:
			from = i
		case dst:
			to = i
		}
	}

	if from < 0 || to < 0 {
		return s, false
	}

	return Move(s, from, to), true
}

func noteKey(n notes.Note) int64 { return n.ID }

func itemKey(it notes.Item) string { return it.ID }

// Notes reorders the collection itself: the note src takes the place of the note dst.
func Notes(c notes.Collection, src, dst int64) (notes.Collection, bool) {
	moved, ok := Flat(c.Notes, noteKey, src, dst)
	if !ok {
		return c, false
	}

	out := notes.Collection{Notes: moved}

	return out.Clone(), true
}

// Items reorders the items of a single note.
func Items(c notes.Collection, noteID int64, src, dst string) (notes.Collection, bool) {
	n, ok := c.Note(noteID)
	if !ok {
		return c, false
	}

	moved, ok := Flat(n.Items, itemKey, src, dst)
	if !ok {
		return c, false
	}

	return c.WithItems(noteID, moved)
}

// Draft reorders the items of an authoring buffer.
func Draft(d *notes.Draft, src, dst string) bool {
	moved, ok := Flat(d.Items, itemKey, src, dst)
	if ok {
		d.Items = moved
	}

	return ok
}
