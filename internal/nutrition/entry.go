package nutrition

import (
	"time"

	"github.com/google/uuid"
)

// Entry is append-only and immutable after creation.
type Entry struct {
	ID       string    `json:"id"`
	LoggedAt time.Time `json:"loggedAt"`
	ItemName string    `json:"itemName"`
	Grams    int       `json:"grams"`
	Calories int       `json:"calories"`
}

func NewEntry(loggedAt time.Time, itemName string, grams, calories int) *Entry {
	return &Entry{
		ID:       uuid.NewString(),
		LoggedAt: loggedAt,
		ItemName: itemName,
		Grams:    grams,
		Calories: calories,
	}
}

// Day returns the calendar date the entry was logged on,
// normalized to UTC midnight so dates compare with ==.
func (e *Entry) Day() time.Time {
	return day(e.LoggedAt)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
