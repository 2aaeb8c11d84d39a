package notes

import (
	"time"

	"github.com/google/uuid"
)

// Item is a single checkable line inside a Note.
type Item struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
	// CompletedAt is set exactly when IsCompleted goes false->true and cleared on the way back.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Note is a titled checklist. Items order is user controlled.
type Note struct {
	// ID is the creation time in Unix milliseconds.
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
	// Reminder is the rendered form of ReminderISO and the string the scheduler matches on.
	Reminder    string `json:"reminder,omitempty"`
	ReminderISO string `json:"reminderIso,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
}

// Collection is the ordered set of Notes. Values are treated as immutable snapshots: every
// operation returns a new Collection and leaves its receiver untouched.
type Collection struct {
	Notes []Note
}

// NewItemID returns a fresh, stable item id.
func NewItemID() string {
	return uuid.NewString()
}

// NewItem returns an open item with a fresh id.
func NewItem(text string) Item {
	return Item{ID: NewItemID(), Text: text}
}

func (i Item) clone() Item {
	if i.CompletedAt != nil {
		at := *i.CompletedAt
		i.CompletedAt = &at
	}

	return i
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	items := make([]Item, len(n.Items))
	for i, it := range n.Items {
		items[i] = it.clone()
	}

	n.Items = items

	return n
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := Collection{Notes: make([]Note, len(c.Notes))}
	for i, n := range c.Notes {
		out.Notes[i] = n.Clone()
	}

	return out
}

// Len is the number of notes.
func (c Collection) Len() int {
	return len(c.Notes)
}

// NoteIndex returns the position of the note with the given id, or -1.
func (c Collection) NoteIndex(id int64) int {
	for i := range c.Notes {
		if c.Notes[i].ID == id {
			return i
		}
	}

	return -1
}

// Note returns the note with the given id.
func (c Collection) Note(id int64) (Note, bool) {
	idx := c.NoteIndex(id)
	if idx < 0 {
		return Note{}, false
	}

	return c.Notes[idx], true
}

// ItemIndex returns the position of the item with the given id in the note, or -1.
func (n Note) ItemIndex(id string) int {
	for i := range n.Items {
		if n.Items[i].ID == id {
			return i
		}
	}

	return -1
}

// Owner returns the id of the note holding the item and the item's position in it.
func (c Collection) Owner(itemID string) (noteID int64, index int, ok bool) {
	for _, n := range c.Notes {
		if idx := n.ItemIndex(itemID); idx >= 0 {
			return n.ID, idx, true
		}
	}

	return 0, -1, false
}
