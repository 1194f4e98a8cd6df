package daycursor

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cursor is the date all "today" aggregations are computed against.
// It starts at the real current date and only moves when explicitly
// advanced, so a user can step through simulated days without the
// aggregation logic caring about the wall clock.
type Cursor struct {
	mu  sync.Mutex
	day time.Time
}

func New(now time.Time) *Cursor {
	y, m, d := now.Date()
	return &Cursor{
		day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func (c *Cursor) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// Advance moves the cursor one day forward and returns the new date.
func (c *Cursor) Advance() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.day = c.day.AddDate(0, 0, 1)
	log.Debugf("day cursor advanced to %s", c.day.Format("2006-01-02"))
	return c.day
}
