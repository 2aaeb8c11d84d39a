package reorder

import (
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/rs/zerolog/log"
)

type gesture struct {
	active   Subject
	origin   int64
	snapshot notes.Collection
}

// Tracker follows one drag gesture at a time: start, any number of provisional moves, then end
// or cancel. Starting a new gesture discards the previous one.
type Tracker struct {
	current *gesture
}

// Start begins a drag of s over the collection c. Disabled subjects and subjects that are not
// in the collection are refused.
func (t *Tracker) Start(c notes.Collection, s Subject) bool {
	if s.Disabled {
		log.Debug().Str("subject", s.String()).Msg("refusing drag of disabled subject")

		return false
	}

	g := &gesture{active: s, snapshot: c.Clone()}

	switch s.Kind {
	case KindNote:
		if c.NoteIndex(s.NoteID) < 0 {
			return false
		}

		g.origin = s.NoteID
	case KindItem:
		owner, _, ok := c.Owner(s.ItemID)
		if !ok {
			return false
		}

		g.origin = owner
		g.active.NoteID = owner
	default:
		return false
	}

	if t.current != nil {
		log.Debug().Str("subject", t.current.active.String()).Msg("dropping unfinished drag")
	}

	t.current = g

	log.Debug().Str("subject", s.String()).Msg("drag started")

	return true
}

// Active returns the subject of the gesture in progress.
func (t *Tracker) Active() (Subject, bool) {
	if t.current == nil {
		return Subject{}, false
	}

	return t.current.active, true
}

// Over handles a pointer move onto a new drop target.
func (t *Tracker) Over(c notes.Collection, over *Target) (notes.Collection, bool) {
	if t.current == nil {
		return c, false
	}

	out, moved := Over(c, t.current.active, over)
	if moved {
		owner, _, _ := out.Owner(t.current.active.ItemID)
		t.current.active.NoteID = owner

		log.Debug().
			Str("subject", t.current.active.String()).
			Int64("note", owner).
			Msg("item moved provisionally")
	}

	return out, moved
}

// End releases the gesture over the given target. Without a target the collection returns to
// its state at drag start.
func (t *Tracker) End(c notes.Collection, over *Target) notes.Collection {
	g := t.current
	t.current = nil

	if g == nil {
		return c
	}

	if over == nil {
		log.Debug().Str("subject", g.active.String()).Msg("drag released without target; reverting")

		return g.snapshot
	}

	out, changed := End(c, g.active, g.origin, over)

	log.Debug().
		Str("subject", g.active.String()).
		Bool("reordered", changed).
		Msg("drag committed")

	return out
}

// Cancel abandons the gesture and returns the collection as it was at drag start.
func (t *Tracker) Cancel(c notes.Collection) notes.Collection {
	g := t.current
	t.current = nil

	if g == nil {
		return c
	}

	log.Debug().Str("subject", g.active.String()).Msg("drag cancelled")

	return g.snapshot
}
