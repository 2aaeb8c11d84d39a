package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/matt-steen/remindlist/pkg/reorder"
	"github.com/rs/zerolog/log"
)

func (c *Controller) initEvents() {
	c.events = map[Key]KeyEvent{}
	c.formEvents = map[Key]KeyEvent{}
	c.memoEvents = map[Key]KeyEvent{}

	c.initNoteEvents(c.events)
	c.initDragEvents(c.events)
	c.initExitEvent(c.events)

	c.formEvents[KeyEsc] = KeyEvent{
		Description: "Cancel",
		Action:      c.getBackAction(),
	}
	c.formEvents[KeyF2] = KeyEvent{
		Description: "Switch between form and items",
		Action:      c.getSwitchFormFocusAction(),
	}

	c.memoEvents[KeyEsc] = KeyEvent{
		Description: "Back",
		Action:      c.getBackAction(),
	}
	c.memoEvents[KeyShiftE] = KeyEvent{
		Description: "Edit memo",
		Action:      c.getEditMemoAction(),
	}
}

// shortcutLine lists the bindings of a page, sorted by description.
func shortcutLine(events map[Key]KeyEvent) string {
	parts := make([]string, 0, len(events))

	for key, event := range events {
		parts = append(parts, fmt.Sprintf("[orange]<%s>[white] %s", key, event.Description))
	}

	sort.Slice(parts, func(i, j int) bool {
		return stripTags(parts[i]) < stripTags(parts[j])
	})

	return strings.Join(parts, "  ")
}

func stripTags(s string) string {
	if idx := strings.Index(s, "[white] "); idx >= 0 {
		return s[idx+len("[white] "):]
	}

	return s
}

func (c *Controller) getBackAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		c.showNotes()

		return nil
	}
}

func (c *Controller) initExitEvent(events map[Key]KeyEvent) {
	events[KeyQ] = KeyEvent{
		Description: "Exit",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			log.Info().Msg("terminating application")

			c.app.Stop()

			return nil
		},
	}
}

func (c *Controller) initNoteEvents(events map[Key]KeyEvent) {
	events[KeyN] = KeyEvent{
		Description: "New list",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelDrag()
			c.switchToForm(0)

			return nil
		},
	}

	events[KeyE] = KeyEvent{
		Description: "Toggle edit mode",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelDrag()
			c.editMode = !c.editMode
			c.refresh()

			return nil
		},
	}

	events[KeyX] = KeyEvent{
		Description: "Check item",
		Action:      c.getToggleItemAction(),
	}

	events[KeyC] = KeyEvent{
		Description: "Complete list",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			r, ok := c.selectedRow()
			if !ok || c.editMode {
				return nil
			}

			c.session.ToggleNote(r.noteID)

			return nil
		},
	}

	events[KeyD] = KeyEvent{
		Description: "Delete list (edit mode)",
		Action:      c.getDeleteAction(),
	}

	events[KeyF] = KeyEvent{
		Description: "Show open/completed",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelDrag()
			c.showCompleted = !c.showCompleted
			c.refresh()

			return nil
		},
	}

	events[KeyM] = KeyEvent{
		Description: "Memo",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelDrag()
			c.showMemo()

			return nil
		},
	}

	events[KeyP] = KeyEvent{
		Description: "Notifications",
		Action:      c.getNotificationAction(),
	}
}

func (c *Controller) getToggleItemAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		r, ok := c.selectedRow()
		if !ok || r.isNote() || c.editMode {
			return nil
		}

		// items of a completed list are read-only
		if n, ok := c.session.Snapshot().Note(r.noteID); !ok || n.IsCompleted {
			return nil
		}

		c.session.ToggleItem(r.noteID, r.itemID)

		return nil
	}
}

func (c *Controller) getDeleteAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if _, dragging := c.session.Dragging(); dragging {
			c.flash("drop or cancel the move (esc) before deleting")

			return nil
		}

		r, ok := c.selectedRow()
		if !ok || !c.editMode {
			return nil
		}

		n, ok := c.session.Snapshot().Note(r.noteID)
		if !ok {
			return nil
		}

		c.showModal(fmt.Sprintf("Delete the list '%s'?", n.Title), []string{"Delete", "Cancel"}, func(label string) {
			if label == "Delete" && c.session.DeleteNote(n.ID) {
				log.Info().Int64("note", n.ID).Msg("deleted list")
			}

			c.refresh()
		})

		return nil
	}
}

func (c *Controller) getNotificationAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if c.notifier.Permission() == reminder.PermissionGranted {
			if err := reminder.SendTest(c.notifier); err != nil {
				log.Warn().Err(err).Msg("error sending test notification")
			}

			return nil
		}

		go func() {
			permission, err := c.notifier.RequestPermission(c.ctx)
			if err != nil {
				log.Warn().Err(err).Msg("error requesting notification permission")

				return
			}

			if permission == reminder.PermissionGranted {
				if err := reminder.SendTest(c.notifier); err != nil {
					log.Warn().Err(err).Msg("error sending test notification")
				}
			}

			c.app.QueueUpdateDraw(c.updateHeader)
		}()

		return nil
	}
}

func (c *Controller) initDragEvents(events map[Key]KeyEvent) {
	events[KeySpace] = KeyEvent{
		Description: "Pick up (edit mode)",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if _, dragging := c.session.Dragging(); dragging {
				return nil
			}

			r, ok := c.selectedRow()
			if !ok {
				return nil
			}

			subject := reorder.NoteSubject(r.noteID, !c.editMode)
			if !r.isNote() {
				subject = reorder.ItemSubject(r.noteID, r.itemID, !c.editMode)
			}

			if !c.session.DragStart(subject) {
				c.flash("turn on edit mode (e) to move lists and items")

				return nil
			}

			c.refresh()

			return nil
		},
	}

	events[KeyEnter] = KeyEvent{
		Description: "Drop / open list",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			r, ok := c.selectedRow()

			if _, dragging := c.session.Dragging(); dragging {
				var target *reorder.Target
				if ok {
					target = r.target()
				}

				c.session.DragEnd(target)
				c.refresh()

				return nil
			}

			if ok && !c.editMode {
				c.switchToForm(r.noteID)
			}

			return nil
		},
	}

	events[KeyEsc] = KeyEvent{
		Description: "Cancel move",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cancelDrag()

			return nil
		},
	}
}

func (c *Controller) cancelDrag() {
	if _, dragging := c.session.Dragging(); !dragging {
		return
	}

	c.session.DragCancel()
	c.refresh()
}
