package notes

import (
	"fmt"
	"strings"
	"time"
)

// AddNote appends a new open note. A blank title leaves the collection unchanged and returns
// ok=false. The note id is now in Unix milliseconds, bumped until it is unique.
func (c Collection) AddNote(title string, items []Item, reminderISO string, now time.Time) (Collection, int64, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return c, 0, false
	}

	id := now.UnixMilli()
	for c.NoteIndex(id) >= 0 {
		id++
	}

	out := c.Clone()
	out.Notes = append(out.Notes, Note{
		ID:          id,
		Title:       title,
		Items:       cloneItems(items),
		Reminder:    FormatReminder(reminderISO),
		ReminderISO: reminderISO,
	})

	return out, id, true
}

// UpdateNote replaces the title, items and reminder of an existing note. The display reminder
// is re-derived from reminderISO so the two never drift apart.
func (c Collection) UpdateNote(id int64, title string, items []Item, reminderISO string) (Collection, bool) {
	title = strings.TrimSpace(title)

	idx := c.NoteIndex(id)
	if idx < 0 || title == "" {
		return c, false
	}

	out := c.Clone()
	n := &out.Notes[idx]
	n.Title = title
	n.Items = cloneItems(items)
	n.ReminderISO = reminderISO
	n.Reminder = FormatReminder(reminderISO)

	return out, true
}

// DeleteNote removes the note with the given id.
func (c Collection) DeleteNote(id int64) (Collection, bool) {
	idx := c.NoteIndex(id)
	if idx < 0 {
		return c, false
	}

	out := c.Clone()
	out.Notes = append(out.Notes[:idx], out.Notes[idx+1:]...)

	return out, true
}

// ToggleNote flips the completion state of a note.
func (c Collection) ToggleNote(id int64) (Collection, bool) {
	idx := c.NoteIndex(id)
	if idx < 0 {
		return c, false
	}

	out := c.Clone()
	out.Notes[idx].IsCompleted = !out.Notes[idx].IsCompleted

	return out, true
}

// ToggleItem flips the completion state of an item, stamping or clearing CompletedAt.
func (c Collection) ToggleItem(noteID int64, itemID string, now time.Time) (Collection, bool) {
	nidx := c.NoteIndex(noteID)
	if nidx < 0 {
		return c, false
	}

	iidx := c.Notes[nidx].ItemIndex(itemID)
	if iidx < 0 {
		return c, false
	}

	out := c.Clone()
	it := &out.Notes[nidx].Items[iidx]
	it.IsCompleted = !it.IsCompleted

	if it.IsCompleted {
		at := now
		it.CompletedAt = &at
	} else {
		it.CompletedAt = nil
	}

	return out, true
}

// TakeItem removes an item from its owning note and returns it.
func (c Collection) TakeItem(noteID int64, itemID string) (Collection, Item, bool) {
	nidx := c.NoteIndex(noteID)
	if nidx < 0 {
		return c, Item{}, false
	}

	iidx := c.Notes[nidx].ItemIndex(itemID)
	if iidx < 0 {
		return c, Item{}, false
	}

	out := c.Clone()
	items := out.Notes[nidx].Items
	it := items[iidx]
	out.Notes[nidx].Items = append(items[:iidx], items[iidx+1:]...)

	return out, it, true
}

// InsertItem places an item into a note at index, clamped to the note's bounds.
func (c Collection) InsertItem(noteID int64, index int, it Item) (Collection, bool) {
	nidx := c.NoteIndex(noteID)
	if nidx < 0 {
		return c, false
	}

	out := c.Clone()
	items := out.Notes[nidx].Items

	if index < 0 {
		index = 0
	}

	if index > len(items) {
		index = len(items)
	}

	items = append(items, Item{})
	copy(items[index+1:], items[index:])
	items[index] = it.clone()
	out.Notes[nidx].Items = items

	return out, true
}

// WithItems returns a copy where the note's items are replaced.
func (c Collection) WithItems(noteID int64, items []Item) (Collection, bool) {
	nidx := c.NoteIndex(noteID)
	if nidx < 0 {
		return c, false
	}

	out := c.Clone()
	out.Notes[nidx].Items = cloneItems(items)

	return out, true
}

// Visible returns the notes shown under the current filter: completed notes when showCompleted
// is set, open notes otherwise.
func (c Collection) Visible(showCompleted bool) []Note {
	out := []Note{}

	for _, n := range c.Notes {
		if n.IsCompleted == showCompleted {
			out = append(out, n)
		}
	}

	return out
}

// Progress reports the completed and total item counts and the rounded percentage.
func (n Note) Progress() (done, total, percent int) {
	total = len(n.Items)
	for _, it := range n.Items {
		if it.IsCompleted {
			done++
		}
	}

	if total > 0 {
		percent = (done*100 + total/2) / total
	}

	return done, total, percent
}

// Validate checks that note ids are unique and every item id appears in exactly one note.
func (c Collection) Validate() error {
	noteIDs := map[int64]bool{}
	owners := map[string]int64{}

	for _, n := range c.Notes {
		if noteIDs[n.ID] {
			return fmt.Errorf("duplicate note id %d", n.ID)
		}

		noteIDs[n.ID] = true

		for _, it := range n.Items {
			if owner, ok := owners[it.ID]; ok {
				return fmt.Errorf("item %s is held by notes %d and %d", it.ID, owner, n.ID)
			}

			owners[it.ID] = n.ID
		}
	}

	return nil
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}

	return out
}
