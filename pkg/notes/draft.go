package notes

import "strings"

// Draft is the input buffer used while authoring or editing a note. Items are committed to a
// Note only when the note is saved.
type Draft struct {
	Title       string
	ReminderISO string
	Items       []Item
}

// DraftFrom loads an existing note into a Draft.
func DraftFrom(n Note) Draft {
	return Draft{
		Title:       n.Title,
		ReminderISO: n.ReminderISO,
		Items:       cloneItems(n.Items),
	}
}

// Add appends a new item. Blank text is ignored.
func (d *Draft) Add(text string) (Item, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, false
	}

	it := NewItem(text)
	d.Items = append(d.Items, it)

	return it, true
}

// Remove drops the item with the given id.
func (d *Draft) Remove(id string) bool {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)

			return true
		}
	}

	return false
}

// UpdateText replaces the text of the item with the given id.
func (d *Draft) UpdateText(id, text string) bool {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items[i].Text = text

			return true
		}
	}

	return false
}

// Reset clears the draft.
func (d *Draft) Reset() {
	*d = Draft{}
}
