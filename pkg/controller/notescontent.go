package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reorder"
	"github.com/rivo/tview"
)

const (
	textColumnRatio = 3
	headerRows      = 1
)

// row is one line of the notes table: a note header when itemID is empty, an item otherwise.
type row struct {
	noteID int64
	itemID string
}

func (r row) isNote() bool {
	return r.itemID == ""
}

// target maps the row to the drop target it represents.
func (r row) target() *reorder.Target {
	if r.isNote() {
		return reorder.OverNote(r.noteID)
	}

	return reorder.OverItem(r.itemID)
}

// buildRows flattens notes into table rows: each note header followed by its items.
func buildRows(list []notes.Note) []row {
	rows := []row{}

	for _, n := range list {
		rows = append(rows, row{noteID: n.ID})

		for _, it := range n.Items {
			rows = append(rows, row{noteID: n.ID, itemID: it.ID})
		}
	}

	return rows
}

// findRow returns the index of the row for the given note and item, or -1.
func findRow(rows []row, noteID int64, itemID string) int {
	for i, r := range rows {
		if itemID != "" {
			if r.itemID == itemID {
				return i
			}

			continue
		}

		if r.isNote() && r.noteID == noteID {
			return i
		}
	}

	return -1
}

// NotesContent implements tview.TableContent over the visible notes.
type NotesContent struct {
	tview.TableContentReadOnly
	notes    map[int64]notes.Note
	rows     []row
	dragging string
}

func newNotesContent(list []notes.Note, dragging string) *NotesContent {
	byID := make(map[int64]notes.Note, len(list))
	for _, n := range list {
		byID[n.ID] = n
	}

	return &NotesContent{notes: byID, rows: buildRows(list), dragging: dragging}
}

// GetCell returns the cell at the given position or nil if no cell.
func (s *NotesContent) GetCell(rowIdx, col int) *tview.TableCell {
	if rowIdx == 0 {
		switch col {
		case 0:
			return tview.NewTableCell("").SetSelectable(false)
		case 1:
			return tview.NewTableCell("list / item").SetExpansion(textColumnRatio).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		case 2:
			return tview.NewTableCell("reminder / progress").SetExpansion(1).
				SetTextColor(tcell.ColorYellow).SetSelectable(false)
		}

		return nil
	}

	idx := rowIdx - headerRows
	if idx < 0 || idx >= len(s.rows) {
		return nil
	}

	r := s.rows[idx]
	n := s.notes[r.noteID]

	if r.isNote() {
		return s.noteCell(n, col)
	}

	itemIdx := n.ItemIndex(r.itemID)
	if itemIdx < 0 {
		return nil
	}

	return s.itemCell(n, n.Items[itemIdx], col)
}

func (s *NotesContent) noteCell(n notes.Note, col int) *tview.TableCell {
	switch col {
	case 0:
		return tview.NewTableCell(checkbox(n.IsCompleted)).SetTextColor(tcell.ColorBlue)
	case 1:
		title := n.Title
		if s.dragging == fmt.Sprintf("note:%d", n.ID) {
			title = "» " + title
		}

		cell := tview.NewTableCell(tview.Escape(title)).SetExpansion(textColumnRatio).
			SetAttributes(tcell.AttrBold)
		if n.IsCompleted {
			cell.SetTextColor(tcell.ColorGray).SetAttributes(tcell.AttrStrikeThrough)
		}

		return cell
	case 2:
		done, total, percent := n.Progress()
		text := fmt.Sprintf("%d/%d (%d%%)", done, total, percent)

		if n.Reminder != "" {
			text = fmt.Sprintf("[orange]⏰ %s[white]  %s", n.Reminder, text)
		}

		return tview.NewTableCell(text).SetExpansion(1)
	}

	return nil
}

func (s *NotesContent) itemCell(n notes.Note, it notes.Item, col int) *tview.TableCell {
	switch col {
	case 0:
		return tview.NewTableCell("  " + checkbox(it.IsCompleted)).SetTextColor(tcell.ColorGreen)
	case 1:
		text := "  " + it.Text
		if s.dragging == "item:"+it.ID {
			text = "» " + it.Text
		}

		cell := tview.NewTableCell(tview.Escape(text)).SetExpansion(textColumnRatio)
		if it.IsCompleted {
			cell.SetTextColor(tcell.ColorGray).SetAttributes(tcell.AttrStrikeThrough)
		}

		return cell
	case 2:
		return tview.NewTableCell("").SetExpansion(1)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (s *NotesContent) GetRowCount() int {
	return len(s.rows) + headerRows
}

// GetColumnCount returns the number of columns in the table.
func (s *NotesContent) GetColumnCount() int {
	return 3
}

// rowAt returns the row shown at the given table row.
func (s *NotesContent) rowAt(tableRow int) (row, bool) {
	idx := tableRow - headerRows
	if idx < 0 || idx >= len(s.rows) {
		return row{}, false
	}

	return s.rows[idx], true
}

func checkbox(checked bool) string {
	if checked {
		return "[x[]"
	}

	return "[ []"
}

func dragLabel(s reorder.Subject) string {
	if s.Kind == reorder.KindItem {
		return "item:" + s.ItemID
	}

	return fmt.Sprintf("note:%d", s.NoteID)
}
