package reminder

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/matt-steen/remindlist/pkg/clock"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/rs/zerolog/log"
)

const reminderBody = "The time you set has arrived."

// Source hands out the latest collection snapshot.
type Source interface {
	Snapshot() notes.Collection
}

// SourceFunc adapts a function to Source.
type SourceFunc func() notes.Collection

// Snapshot calls f.
func (f SourceFunc) Snapshot() notes.Collection {
	return f()
}

// Scheduler fires reminders whose minute key equals the current minute. It is meant to be
// polled far more often than once a minute; each distinct minute gets at most one pass.
type Scheduler struct {
	clock    clock.Clock
	notifier Notifier
	source   Source

	mu              sync.Mutex
	lastFiredMinute string
}

// NewScheduler creates a Scheduler with no minute fired yet.
func NewScheduler(clk clock.Clock, notifier Notifier, source Source) *Scheduler {
	return &Scheduler{
		clock:    clk,
		notifier: notifier,
		source:   source,
	}
}

// LastFiredMinute returns the minute key of the last matching pass.
func (s *Scheduler) LastFiredMinute() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastFiredMinute
}

// Check runs one polling tick and returns the number of notifications dispatched successfully.
// Without permission it does nothing at all. A minute is marked as fired before any dispatch,
// so failed notifications are not retried.
func (s *Scheduler) Check() int {
	if s.notifier.Permission() != PermissionGranted {
		return 0
	}

	minute := notes.MinuteKey(s.clock.Now())

	s.mu.Lock()
	if minute == s.lastFiredMinute {
		s.mu.Unlock()

		return 0
	}

	s.lastFiredMinute = minute
	s.mu.Unlock()

	sent := 0

	for _, n := range Due(s.source.Snapshot(), minute) {
		if err := s.dispatch(n); err != nil {
			log.Warn().Err(err).Int64("note", n.ID).Str("minute", minute).Msg("reminder dispatch failed")

			continue
		}

		log.Debug().Int64("note", n.ID).Str("minute", minute).Msgf("reminder fired for '%s'", n.Title)

		sent++
	}

	return sent
}

// Due returns the open notes whose reminder equals minute exactly.
func Due(c notes.Collection, minute string) []notes.Note {
	out := []notes.Note{}

	for _, n := range c.Notes {
		if !n.IsCompleted && n.Reminder != "" && n.Reminder == minute {
			out = append(out, n)
		}
	}

	return out
}

func (s *Scheduler) dispatch(n notes.Note) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()

	return s.notifier.Dispatch("Reminder: "+n.Title, Notification{
		Body: reminderBody,
		Tag:  strconv.FormatInt(n.ID, 10),
	})
}
