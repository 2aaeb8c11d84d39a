package reorder

import "fmt"

// Kind tells note-level drags apart from item-level drags. It is decided once at drag start
// and never re-derived from the event.
type Kind int

const (
	KindNote Kind = iota + 1
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindItem:
		return "item"
	}

	return "unknown"
}

// Subject is the thing being dragged.
type Subject struct {
	Kind   Kind
	NoteID int64
	ItemID string
	// Disabled subjects are refused by the engine; the view sets it when edit mode is off.
	Disabled bool
}

// NoteSubject describes a drag of a whole note.
func NoteSubject(noteID int64, disabled bool) Subject {
	return Subject{Kind: KindNote, NoteID: noteID, Disabled: disabled}
}

// ItemSubject describes a drag of a single item owned by noteID.
func ItemSubject(noteID int64, itemID string, disabled bool) Subject {
	return Subject{Kind: KindItem, NoteID: noteID, ItemID: itemID, Disabled: disabled}
}

func (s Subject) String() string {
	if s.Kind == KindItem {
		return fmt.Sprintf("item %s (note %d)", s.ItemID, s.NoteID)
	}

	return fmt.Sprintf("%s %d", s.Kind, s.NoteID)
}

// Target is the element under the pointer: a note's own area or one of its items. For item
// targets the owning note is looked up in the collection, not taken from NoteID.
type Target struct {
	Kind   Kind
	NoteID int64
	ItemID string
}

// OverNote targets the empty area of a note.
func OverNote(noteID int64) *Target {
	return &Target{Kind: KindNote, NoteID: noteID}
}

// OverItem targets an item.
func OverItem(itemID string) *Target {
	return &Target{Kind: KindItem, ItemID: itemID}
}
