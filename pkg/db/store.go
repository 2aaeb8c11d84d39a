package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/rs/zerolog/log"
)

// Store persists the note collection, the free-text memo and the notification permission on
// top of a KV.
type Store struct {
	kv KV
}

// NewStore returns a Store writing to kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Close closes the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}

// Load reads the saved collection. found is false when nothing was saved or the saved data
// could not be parsed; parse failures are logged rather than returned. Legacy records are
// migrated and written back.
func (s *Store) Load(ctx context.Context) (c notes.Collection, found bool, err error) {
	raw, err := s.kv.Get(ctx, KeyNotes)
	if errors.Is(err, ErrNotFound) {
		return notes.Collection{}, false, nil
	}

	if err != nil {
		return notes.Collection{}, false, err
	}

	c, migrated, err := decodeCollection(raw)
	if err != nil {
		log.Error().Err(err).Msg("saved notes could not be parsed; starting empty")

		return notes.Collection{}, false, nil
	}

	if migrated {
		log.Info().Int("notes", c.Len()).Msg("migrated legacy notes")

		if err := s.Save(ctx, c); err != nil {
			log.Warn().Err(err).Msg("error writing back migrated notes")
		}
	}

	return c, true, nil
}

// Save writes the collection. An empty collection removes the key.
func (s *Store) Save(ctx context.Context, c notes.Collection) error {
	if c.Len() == 0 {
		return s.kv.Delete(ctx, KeyNotes)
	}

	raw, err := json.Marshal(c.Notes)
	if err != nil {
		return fmt.Errorf("error encoding notes: %w", err)
	}

	return s.kv.Put(ctx, KeyNotes, string(raw))
}

// LoadMemo reads the free-text memo; a missing memo is empty.
func (s *Store) LoadMemo(ctx context.Context) (string, error) {
	memo, err := s.kv.Get(ctx, KeyMemo)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}

	return memo, err
}

// SaveMemo writes the free-text memo.
func (s *Store) SaveMemo(ctx context.Context, memo string) error {
	return s.kv.Put(ctx, KeyMemo, memo)
}

// LoadPermission reads the stored notification permission, PermissionDefault when unset.
func (s *Store) LoadPermission(ctx context.Context) (reminder.Permission, error) {
	raw, err := s.kv.Get(ctx, KeyPermission)
	if errors.Is(err, ErrNotFound) {
		return reminder.PermissionDefault, nil
	}

	if err != nil {
		return reminder.PermissionDefault, err
	}

	return reminder.ParsePermission(strings.TrimSpace(raw)), nil
}

// SavePermission writes the notification permission.
func (s *Store) SavePermission(ctx context.Context, p reminder.Permission) error {
	return s.kv.Put(ctx, KeyPermission, string(p))
}

// decodeCollection parses stored notes, rewriting legacy single-content notes into a one-item
// list, epoch-millisecond completion times into timestamps, and repairing duplicate ids.
// migrated reports whether anything was rewritten.
func decodeCollection(raw string) (notes.Collection, bool, error) {
	var wire []wireNote
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return notes.Collection{}, false, fmt.Errorf("error decoding notes: %w", err)
	}

	migrated := false
	c := notes.Collection{Notes: make([]notes.Note, 0, len(wire))}

	for _, w := range wire {
		n := notes.Note{
			ID:          w.ID,
			Title:       w.Title,
			Reminder:    w.Reminder,
			ReminderISO: w.ReminderISO,
			IsCompleted: w.IsCompleted,
			Items:       []notes.Item{},
		}

		switch {
		case w.Items != nil:
			for _, wi := range *w.Items {
				if wi.CompletedAt != nil && wi.CompletedAt.epoch {
					migrated = true
				}

				n.Items = append(n.Items, wi.item())
			}
		case w.Content != nil && *w.Content != "":
			n.Items = []notes.Item{notes.NewItem(*w.Content)}
			migrated = true
		}

		if w.Content != nil {
			migrated = true
		}

		if n.Reminder == "" && n.ReminderISO != "" {
			n.Reminder = notes.FormatReminder(n.ReminderISO)
		}

		c.Notes = append(c.Notes, n)
	}

	if repair(&c) {
		migrated = true
	}

	return c, migrated, nil
}

// repair drops repeated item ids (keeping the first holder) and renumbers repeated note ids,
// so a loaded collection always satisfies the ownership invariant.
func repair(c *notes.Collection) bool {
	changed := false
	noteIDs := map[int64]bool{}
	itemIDs := map[string]bool{}

	var maxID int64

	for _, n := range c.Notes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}

	for i := range c.Notes {
		n := &c.Notes[i]

		if noteIDs[n.ID] {
			maxID++

			log.Warn().Int64("note", n.ID).Int64("newID", maxID).Msg("renumbering duplicate note id")

			n.ID = maxID
			changed = true
		}

		noteIDs[n.ID] = true

		kept := n.Items[:0]

		for _, it := range n.Items {
			if it.ID == "" {
				it.ID = notes.NewItemID()
				changed = true
			}

			if itemIDs[it.ID] {
				log.Warn().Str("item", it.ID).Int64("note", n.ID).Msg("dropping duplicate item")

				changed = true

				continue
			}

			itemIDs[it.ID] = true
			kept = append(kept, it)
		}

		n.Items = kept
	}

	return changed
}
