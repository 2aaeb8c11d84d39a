package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matt-steen/remindlist/pkg/notes"
)

// These constants are the keys the Store writes under.
const (
	KeyNotes      = "notes"
	KeyMemo       = "memo"
	KeyPermission = "notification_permission"
)

// ErrNotFound is returned by a KV when the key holds no value.
var ErrNotFound = errors.New("key not found")

// wireNote is the stored shape of a note. Older records carried a single Content string
// instead of Items; they are migrated on load.
type wireNote struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Items       *[]wireItem `json:"items,omitempty"`
	Reminder    string      `json:"reminder,omitempty"`
	ReminderISO string      `json:"reminderIso,omitempty"`
	IsCompleted bool        `json:"isCompleted"`
	Content     *string     `json:"content,omitempty"`
}

type wireItem struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsCompleted bool      `json:"isCompleted"`
	CompletedAt *wireTime `json:"completedAt,omitempty"`
}

// wireTime reads a completion time written either as epoch milliseconds, as older records
// have it, or as an RFC 3339 string.
type wireTime struct {
	time.Time
	epoch bool
}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '"' {
		var ms json.Number
		if err := json.Unmarshal(b, &ms); err != nil {
			return fmt.Errorf("error decoding completedAt %s: %w", b, err)
		}

		n, err := ms.Int64()
		if err != nil {
			f, ferr := ms.Float64()
			if ferr != nil {
				return fmt.Errorf("error decoding completedAt %s: %w", b, err)
			}

			n = int64(f)
		}

		w.Time = time.UnixMilli(n)
		w.epoch = true

		return nil
	}

	return w.Time.UnmarshalJSON(b)
}

func (w wireItem) item() notes.Item {
	it := notes.Item{ID: w.ID, Text: w.Text, IsCompleted: w.IsCompleted}

	if w.CompletedAt != nil {
		at := w.CompletedAt.Time
		it.CompletedAt = &at
	}

	return it
}
