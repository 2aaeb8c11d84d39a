package retention

import (
	"time"

	"github.com/matt-steen/remindlist/pkg/clock"
	"github.com/matt-steen/remindlist/pkg/notes"
	"github.com/rs/zerolog/log"
)

// Policy tunes what the sweep treats as stale.
type Policy struct {
	// PurgeUndated drops completed items with no CompletedAt. By default they are kept, since
	// their age is unknown.
	PurgeUndated bool
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Keep reports whether an item survives a sweep whose day starts at startOfToday.
func (p Policy) Keep(it notes.Item, startOfToday time.Time) bool {
	if !it.IsCompleted {
		return true
	}

	if it.CompletedAt == nil {
		return !p.PurgeUndated
	}

	return !it.CompletedAt.Before(startOfToday)
}

// Sweep drops completed items finished before the start of the day containing now. Notes are
// never removed, even when they end up empty. The input is left untouched; when nothing is
// pruned the returned collection is the input itself.
func Sweep(c notes.Collection, now time.Time, p Policy) (notes.Collection, int) {
	startOfToday := StartOfDay(now)
	removed := 0

	for _, n := range c.Notes {
		for _, it := range n.Items {
			if !p.Keep(it, startOfToday) {
				removed++
			}
		}
	}

	if removed == 0 {
		return c, 0
	}

	out := c.Clone()

	for i := range out.Notes {
		kept := make([]notes.Item, 0, len(out.Notes[i].Items))

		for _, it := range out.Notes[i].Items {
			if p.Keep(it, startOfToday) {
				kept = append(kept, it)
			}
		}

		out.Notes[i].Items = kept
	}

	return out, removed
}

// Sweeper runs Sweep against a Clock.
type Sweeper struct {
	clock  clock.Clock
	policy Policy
}

// NewSweeper returns a Sweeper reading time from clk.
func NewSweeper(clk clock.Clock, policy Policy) *Sweeper {
	return &Sweeper{clock: clk, policy: policy}
}

// Sweep prunes stale completed items as of the clock's current time.
func (s *Sweeper) Sweep(c notes.Collection) (notes.Collection, int) {
	out, removed := Sweep(c, s.clock.Now(), s.policy)
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("swept completed items")
	}

	return out, removed
}
