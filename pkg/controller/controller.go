package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/matt-steen/remindlist/pkg/session"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	pageNotes = "notes"
	pageForm  = "form"
	pageMemo  = "memo"
	pageModal = "modal"

	maxMessages = 3
)

// Controller mediates between the session and the view.
type Controller struct {
	ctx      context.Context
	session  *session.Session
	notifier *Notifier
	app      *tview.Application
	pages    *tview.Pages

	header  *tview.TextView
	table   *tview.Table
	content *NotesContent

	// edit mode gates dragging and deleting, and disables checkboxes
	editMode      bool
	showCompleted bool
	focus         row
	reselecting   bool

	form        *tview.Form
	draftList   *tview.List
	draft       notes.Draft
	editingID   int64
	titleField  *tview.InputField
	remindField *tview.InputField
	itemField   *tview.InputField

	memoView *tview.TextView

	events     map[Key]KeyEvent
	formEvents map[Key]KeyEvent
	memoEvents map[Key]KeyEvent

	messages     map[string]string
	messageOrder []string
}

// NewController creates a new Controller to run the app.
func NewController(ctx context.Context, sess *session.Session, notifier *Notifier) (*Controller, error) {
	c := Controller{
		ctx:      ctx,
		session:  sess,
		notifier: notifier,
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		messages: map[string]string{},
	}

	c.initEvents()

	c.pages.AddPage(pageNotes, c.getNotesGrid(), true, true)
	c.pages.AddPage(pageForm, c.getFormGrid(), true, false)
	c.pages.AddPage(pageMemo, c.getMemoGrid(), true, false)

	c.notifier.attach(c.promptPermission, c.deliver)

	sess.OnChange(func(notes.Collection) {
		c.app.QueueUpdateDraw(c.refresh)
	})

	return &c, nil
}

// Go runs the app until the user quits.
func (c *Controller) Go() error {
	c.showNotes()

	if err := c.app.SetRoot(c.pages, true).Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}

	return nil
}

func (c *Controller) getNotesGrid() *tview.Grid {
	c.header = tview.NewTextView().SetDynamicColors(true)
	c.header.SetScrollable(false)

	c.table = tview.NewTable().SetBorders(false)
	c.table.SetSelectable(true, false)
	c.table.SetFixed(headerRows, 0)
	c.table.SetSelectionChangedFunc(c.setCurrentRow)

	grid := tview.NewGrid().SetBorders(true).SetRows(7, 0)
	grid.AddItem(c.header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.table, 1, 0, 1, 1, 0, 0, true)

	return grid
}

// refresh rebuilds the table from the session and restores the selection onto the focused row.
func (c *Controller) refresh() {
	dragging := ""
	if subject, ok := c.session.Dragging(); ok {
		dragging = dragLabel(subject)
	}

	c.content = newNotesContent(c.session.Snapshot().Visible(c.showCompleted), dragging)
	c.table.SetContent(c.content)

	idx := findRow(c.content.rows, c.focus.noteID, c.focus.itemID)
	if idx < 0 && c.focus.itemID != "" {
		idx = findRow(c.content.rows, c.focus.noteID, "")
	}

	if idx < 0 && len(c.content.rows) > 0 {
		idx = 0
	}

	if idx >= 0 {
		c.reselecting = true
		c.table.Select(idx+headerRows, 0)
		c.reselecting = false
		c.focus = c.content.rows[idx]
	}

	c.updateHeader()
}

// when the row selection changes, update the focus; during an item drag the row under the
// cursor becomes the provisional drop target.
func (c *Controller) setCurrentRow(tableRow, col int) {
	if c.reselecting || c.content == nil {
		return
	}

	r, ok := c.content.rowAt(tableRow)
	if !ok {
		return
	}

	subject, dragging := c.session.Dragging()
	if !dragging {
		c.focus = r
		c.updateHeader()

		return
	}

	if c.session.DragOver(r.target()) {
		if moved, ok := c.session.Dragging(); ok {
			c.focus = row{noteID: moved.NoteID, itemID: moved.ItemID}
		}

		log.Debug().Str("subject", subject.String()).Msg("drag target changed")
		c.refresh()

		return
	}

	c.updateHeader()
}

func (c *Controller) selectedRow() (row, bool) {
	if c.content == nil {
		return row{}, false
	}

	tableRow, _ := c.table.GetSelection()

	return c.content.rowAt(tableRow)
}

func (c *Controller) updateHeader() {
	var b strings.Builder

	mode := "[green]browse"
	if c.editMode {
		mode = "[orange]edit"
	}

	filter := "open lists"
	if c.showCompleted {
		filter = "completed lists"
	}

	fmt.Fprintf(&b, "[yellow]remindlist[white]  mode: %s[white]  showing: %s  notifications: %s\n",
		mode, filter, c.notifier.Permission())

	if subject, ok := c.session.Dragging(); ok {
		fmt.Fprintf(&b, "[orange]moving %s[white] - <Enter> drop, <Esc> cancel\n", subject)
	} else {
		b.WriteString("\n")
	}

	b.WriteString(shortcutLine(c.events))
	b.WriteString("\n")

	for _, tag := range c.messageOrder {
		fmt.Fprintf(&b, "[orange]%s[white]\n", tview.Escape(c.messages[tag]))
	}

	c.header.SetText(b.String())
}

func (c *Controller) showNotes() {
	c.app.SetInputCapture(c.handleKeys)
	c.pages.SwitchToPage(pageNotes)
	c.refresh()
	c.app.SetFocus(c.table)
}

func (c *Controller) handleKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.events[AsKey(evt)]; ok {
		return k.Action(evt)
	}

	return evt
}

// flash shows a short message in the header.
func (c *Controller) flash(msg string) {
	c.addMessage("flash", msg)
}

func (c *Controller) addMessage(tag, msg string) {
	if tag == "" {
		tag = fmt.Sprintf("msg-%d", len(c.messageOrder))
	}

	if _, ok := c.messages[tag]; !ok {
		c.messageOrder = append(c.messageOrder, tag)
	}

	c.messages[tag] = msg

	for len(c.messageOrder) > maxMessages {
		delete(c.messages, c.messageOrder[0])
		c.messageOrder = c.messageOrder[1:]
	}

	c.updateHeader()
}

// deliver is called by the Notifier, usually from the poller goroutine.
func (c *Controller) deliver(title string, n reminder.Notification) {
	c.app.QueueUpdateDraw(func() {
		c.addMessage(n.Tag, fmt.Sprintf("🔔 %s - %s", title, n.Body))
	})
}

// promptPermission asks the user, in a modal, whether reminders may be shown. It must not be
// called from the event loop.
func (c *Controller) promptPermission(ctx context.Context) (bool, error) {
	answer := make(chan bool, 1)

	c.app.QueueUpdateDraw(func() {
		c.showModal("Show reminder notifications in this terminal?", []string{"Allow", "Deny"}, func(label string) {
			answer <- label == "Allow"
		})
	})

	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// showModal displays a modal over the current page; done receives the chosen button label.
func (c *Controller) showModal(text string, buttons []string, done func(label string)) {
	previous := c.app.GetInputCapture()
	focus := c.app.GetFocus()

	modal := tview.NewModal().SetText(text).AddButtons(buttons)
	modal.SetDoneFunc(func(_ int, label string) {
		c.pages.RemovePage(pageModal)
		c.app.SetInputCapture(previous)
		c.app.SetFocus(focus)
		done(label)
	})

	c.app.SetInputCapture(nil)
	c.pages.AddPage(pageModal, modal, true, true)
	c.app.SetFocus(modal)
}
