package session

import (
	"context"
	"sync"
	"time"

	"github.com/matt-steen/remindlist/pkg/clock"
	"github.com/matt-steen/remindlist/pkg/config"
	"github.com/matt-steen/remindlist/pkg/db"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/poller"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/matt-steen/remindlist/pkg/reorder"
	"github.com/matt-steen/remindlist/pkg/retention"
	"github.com/rs/zerolog/log"
)

// Options configures a Session.
type Options struct {
	Clock        clock.Clock
	Notifier     reminder.Notifier
	Policy       retention.Policy
	PollInterval time.Duration
}

// Session owns the note collection. Every mutation, whether it comes from the view, a drag
// gesture or the poller, goes through its lock and is persisted right after it is applied.
type Session struct {
	store     *db.Store
	clock     clock.Clock
	sweeper   *retention.Sweeper
	scheduler *reminder.Scheduler
	poller    *poller.Poller

	mu        sync.Mutex
	coll      notes.Collection
	memo      string
	drag      reorder.Tracker
	listeners []func(notes.Collection)
}

// New loads the saved state from store and prepares, without starting, the poller.
func New(ctx context.Context, store *db.Store, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}

	coll, _, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	memo, err := store.LoadMemo(ctx)
	if err != nil {
		return nil, err
	}

	s := &Session{
		store:   store,
		clock:   opts.Clock,
		sweeper: retention.NewSweeper(opts.Clock, opts.Policy),
		coll:    coll,
		memo:    memo,
	}

	tasks := []poller.Task{func() { s.Sweep() }}

	if opts.Notifier != nil {
		s.scheduler = reminder.NewScheduler(opts.Clock, opts.Notifier, reminder.SourceFunc(s.Snapshot))
		tasks = append(tasks, func() { s.scheduler.Check() })
	}

	s.poller = poller.New(opts.PollInterval, tasks...)

	return s, nil
}

// Start sweeps once and then starts the poller.
func (s *Session) Start(ctx context.Context) {
	s.Sweep()
	s.poller.Start(ctx)
}

// Stop stops the poller. It is safe to call more than once.
func (s *Session) Stop() {
	s.poller.Stop()
}

// Tick runs one poller pass synchronously.
func (s *Session) Tick() {
	s.poller.Tick()
}

// Scheduler returns the reminder scheduler, nil when the session has no notifier.
func (s *Session) Scheduler() *reminder.Scheduler {
	return s.scheduler
}

// Snapshot returns the current collection.
func (s *Session) Snapshot() notes.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.coll.Clone()
}

// OnChange registers fn to be called with the new collection after every change.
func (s *Session) OnChange(fn func(notes.Collection)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// apply runs fn under the lock and, when it reports a change, stores the result, persists it
// unless a drag is in progress, and notifies listeners.
func (s *Session) apply(fn func(notes.Collection) (notes.Collection, bool)) bool {
	s.mu.Lock()

	next, changed := fn(s.coll)
	if !changed {
		s.mu.Unlock()

		return false
	}

	s.coll = next

	if _, dragging := s.drag.Active(); !dragging {
		s.persist(next)
	}

	listeners := append([]func(notes.Collection){}, s.listeners...)
	snapshot := next.Clone()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}

	return true
}

// commit applies a mutation that is not part of a drag. A drag in progress is cancelled first,
// so the gesture's revert can never roll the mutation back.
func (s *Session) commit(fn func(notes.Collection) (notes.Collection, bool)) bool {
	applied := false

	s.apply(func(c notes.Collection) (notes.Collection, bool) {
		cancelled := false

		if subject, dragging := s.drag.Active(); dragging {
			log.Debug().Str("subject", subject.String()).Msg("cancelling drag before edit")

			c = s.drag.Cancel(c)
			cancelled = true
		}

		next, changed := fn(c)
		if !changed {
			return c, cancelled
		}

		applied = true

		return next, true
	})

	return applied
}

func (s *Session) persist(c notes.Collection) {
	if err := s.store.Save(context.Background(), c); err != nil {
		log.Error().Err(err).Int("notes", c.Len()).Msg("error saving notes")
	}
}

// AddNote saves a draft as a new note and returns its id.
func (s *Session) AddNote(d notes.Draft) (int64, bool) {
	var id int64

	ok := s.commit(func(c notes.Collection) (notes.Collection, bool) {
		var added bool

		c, id, added = c.AddNote(d.Title, d.Items, d.ReminderISO, s.clock.Now())

		return c, added
	})

	return id, ok
}

// UpdateNote saves a draft over an existing note.
func (s *Session) UpdateNote(id int64, d notes.Draft) bool {
	return s.commit(func(c notes.Collection) (notes.Collection, bool) {
		return c.UpdateNote(id, d.Title, d.Items, d.ReminderISO)
	})
}

// DeleteNote removes a note.
func (s *Session) DeleteNote(id int64) bool {
	return s.commit(func(c notes.Collection) (notes.Collection, bool) {
		return c.DeleteNote(id)
	})
}

// ToggleNote flips a note's completion.
func (s *Session) ToggleNote(id int64) bool {
	return s.commit(func(c notes.Collection) (notes.Collection, bool) {
		return c.ToggleNote(id)
	})
}

// ToggleItem flips an item's completion.
func (s *Session) ToggleItem(noteID int64, itemID string) bool {
	return s.commit(func(c notes.Collection) (notes.Collection, bool) {
		return c.ToggleItem(noteID, itemID, s.clock.Now())
	})
}

// Sweep prunes stale completed items and returns how many were removed. It does nothing while
// a drag is in progress; the next poller tick picks the items up.
func (s *Session) Sweep() int {
	removed := 0

	s.apply(func(c notes.Collection) (notes.Collection, bool) {
		if _, dragging := s.drag.Active(); dragging {
			return c, false
		}

		var out notes.Collection

		out, removed = s.sweeper.Sweep(c)

		return out, removed > 0
	})

	return removed
}

// DragStart begins a drag gesture.
func (s *Session) DragStart(subject reorder.Subject) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drag.Start(s.coll, subject)
}

// Dragging returns the subject of the drag in progress.
func (s *Session) Dragging() (reorder.Subject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drag.Active()
}

// DragOver moves the pointer of the drag in progress onto target.
func (s *Session) DragOver(target *reorder.Target) bool {
	return s.apply(func(c notes.Collection) (notes.Collection, bool) {
		return s.drag.Over(c, target)
	})
}

// DragEnd releases the drag in progress over target; a nil target reverts the gesture.
func (s *Session) DragEnd(target *reorder.Target) {
	s.apply(func(c notes.Collection) (notes.Collection, bool) {
		return s.drag.End(c, target), true
	})
}

// DragCancel abandons the drag in progress and restores the state from drag start.
func (s *Session) DragCancel() {
	s.apply(func(c notes.Collection) (notes.Collection, bool) {
		return s.drag.Cancel(c), true
	})
}

// Memo returns the free-text memo.
func (s *Session) Memo() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.memo
}

// SetMemo replaces and persists the free-text memo.
func (s *Session) SetMemo(memo string) {
	s.mu.Lock()
	s.memo = memo
	s.mu.Unlock()

	if err := s.store.SaveMemo(context.Background(), memo); err != nil {
		log.Error().Err(err).Msg("error saving memo")
	}
}
