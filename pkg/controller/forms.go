package controller

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reorder"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	reminderInputLayout = "2006-01-02T15:04"
	titleMax            = 80
	itemMax             = 200
)

// switchToForm opens the note form for the note with the given id, or for a new note when
// id is 0.
func (c *Controller) switchToForm(id int64) {
	c.editingID = 0
	c.draft.Reset()

	title := "New list"

	if n, ok := c.session.Snapshot().Note(id); ok && id != 0 {
		c.editingID = id
		c.draft = notes.DraftFrom(n)
		title = "Edit list"
	}

	c.form.SetTitle(title)
	c.titleField.SetText(c.draft.Title)
	c.remindField.SetText(c.draft.ReminderISO)
	c.itemField.SetText("")
	c.updateDraftList(0)

	c.form.SetFocus(0)
	c.pages.SwitchToPage(pageForm)
	c.app.SetFocus(c.form)
	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) handleFormKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.formEvents[AsKey(evt)]; ok {
		return k.Action(evt)
	}

	return evt
}

func (c *Controller) getSwitchFormFocusAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if c.draftList.HasFocus() {
			c.app.SetFocus(c.form)
		} else {
			c.app.SetFocus(c.draftList)
		}

		return nil
	}
}

func (c *Controller) getFormGrid() *tview.Grid {
	help := tview.NewTextView().SetDynamicColors(true)
	help.SetText(shortcutLine(c.formEvents) +
		"\n[orange]items:[white] <x> remove  <K>/<J> move up/down  <r> replace text with the Item field")

	c.initForm()
	c.initDraftList()

	grid := tview.NewGrid().SetBorders(true).SetRows(3, 0).SetColumns(0, 0)
	grid.AddItem(help, 0, 0, 1, 2, 0, 0, false)
	grid.AddItem(c.form, 1, 0, 1, 1, 0, 0, true)
	grid.AddItem(c.draftList, 1, 1, 1, 1, 0, 0, false)

	return grid
}

func (c *Controller) initForm() {
	c.form = tview.NewForm().
		AddInputField("Title", "", titleMax, nil, nil).
		AddInputField("Reminder (YYYY-MM-DD HH:MM)", "", len(reminderInputLayout), nil, nil).
		AddInputField("Item", "", itemMax, nil, nil)

	c.form.SetBorder(true)

	c.titleField, _ = c.form.GetFormItemByLabel("Title").(*tview.InputField)
	c.remindField, _ = c.form.GetFormItemByLabel("Reminder (YYYY-MM-DD HH:MM)").(*tview.InputField)
	c.itemField, _ = c.form.GetFormItemByLabel("Item").(*tview.InputField)

	c.itemField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			c.addDraftItem()
		}
	})

	c.form.AddButton("Add item", c.addDraftItem)
	c.form.AddButton("Save", c.saveForm)
	c.form.AddButton("Cancel", c.showNotes)
}

func (c *Controller) addDraftItem() {
	if _, ok := c.draft.Add(c.itemField.GetText()); ok {
		c.itemField.SetText("")
		c.updateDraftList(len(c.draft.Items) - 1)
	}
}

func (c *Controller) saveForm() {
	reminderISO, ok := normalizeReminder(c.remindField.GetText())
	if !ok {
		c.remindField.SetLabel("Reminder (YYYY-MM-DD HH:MM) [red]invalid[white]")

		return
	}

	c.remindField.SetLabel("Reminder (YYYY-MM-DD HH:MM)")

	c.draft.Title = c.titleField.GetText()
	c.draft.ReminderISO = reminderISO

	log.Debug().Int64("editing", c.editingID).Msgf("saving list with title '%s'", c.draft.Title)

	var saved bool

	if c.editingID == 0 {
		var id int64

		id, saved = c.session.AddNote(c.draft)
		if saved {
			c.focus = row{noteID: id}
		}
	} else {
		saved = c.session.UpdateNote(c.editingID, c.draft)
	}

	if !saved {
		c.titleField.SetLabel("Title [red]required[white]")

		return
	}

	c.titleField.SetLabel("Title")
	c.draft.Reset()
	c.showNotes()
}

// normalizeReminder turns user input into the stored reminder input format. Empty input clears
// the reminder.
func normalizeReminder(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", true
	}

	t, ok := notes.ParseReminder(input)
	if !ok {
		return "", false
	}

	return t.Format(reminderInputLayout), true
}

func (c *Controller) initDraftList() {
	c.draftList = tview.NewList().ShowSecondaryText(false)
	c.draftList.SetBorder(true).SetTitle("Items")

	c.draftList.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		idx := c.draftList.GetCurrentItem()
		if idx < 0 || idx >= len(c.draft.Items) {
			return evt
		}

		id := c.draft.Items[idx].ID

		switch AsKey(evt) {
		case KeyX:
			c.draft.Remove(id)
			c.updateDraftList(idx - 1)

			return nil
		case KeyShiftK:
			if idx > 0 && reorder.Draft(&c.draft, id, c.draft.Items[idx-1].ID) {
				c.updateDraftList(idx - 1)
			}

			return nil
		case KeyShiftJ:
			if idx+1 < len(c.draft.Items) && reorder.Draft(&c.draft, id, c.draft.Items[idx+1].ID) {
				c.updateDraftList(idx + 1)
			}

			return nil
		case KeyR:
			if text := strings.TrimSpace(c.itemField.GetText()); text != "" && c.draft.UpdateText(id, text) {
				c.itemField.SetText("")
				c.updateDraftList(idx)
			}

			return nil
		}

		return evt
	})
}

func (c *Controller) updateDraftList(selected int) {
	c.draftList.Clear()

	for _, it := range c.draft.Items {
		c.draftList.AddItem(fmt.Sprintf("%s %s", checkbox(it.IsCompleted), tview.Escape(it.Text)), "", 0, nil)
	}

	if selected < 0 {
		selected = 0
	}

	if selected < len(c.draft.Items) {
		c.draftList.SetCurrentItem(selected)
	}
}
