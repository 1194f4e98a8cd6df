package nutrition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var ErrInvalidEntry = errors.New("invalid nutrition entry")

type nutritionStore interface {
	AddNutrition(email string, entry *Entry)
	GetNutrition(email string) []*Entry
}

type Service struct {
	store nutritionStore
	now   func() time.Time
}

func NewService(store nutritionStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// LogNutrition appends an entry to the user's nutrition log. A zero
// loggedAt means "now". Entries are immutable once logged.
func (s *Service) LogNutrition(
	ctx context.Context,
	email, itemName string,
	grams, calories int,
	loggedAt time.Time,
) (_ *Entry, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.log")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if itemName == "" {
		return nil, fmt.Errorf("%w: item name empty", ErrInvalidEntry)
	}
	if grams < 0 {
		return nil, fmt.Errorf("%w: negative grams", ErrInvalidEntry)
	}
	if calories < 0 {
		return nil, fmt.Errorf("%w: negative calories", ErrInvalidEntry)
	}

	if loggedAt.IsZero() {
		loggedAt = s.now()
	}

	entry := NewEntry(loggedAt, itemName, grams, calories)
	s.store.AddNutrition(email, entry)
	return entry, nil
}

// DailyCalories sums the calories over the entries logged on the given
// calendar date. Time of day is ignored, an entry at 23:59:59 still
// counts for its day.
func (s *Service) DailyCalories(ctx context.Context, email string, date time.Time) int {
	_, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.dailyCalories")
	defer span.End()

	d := day(date)
	total := 0
	for _, e := range s.store.GetNutrition(email) {
		if e.Day().Equal(d) {
			total += e.Calories
		}
	}

	span.SetAttributes(attribute.Int("calories", total))
	return total
}

// ListForDate returns the entries logged on the date, in log order.
func (s *Service) ListForDate(ctx context.Context, email string, date time.Time) []*Entry {
	_, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.listForDate")
	defer span.End()

	d := day(date)
	var entries []*Entry
	for _, e := range s.store.GetNutrition(email) {
		if e.Day().Equal(d) {
			entries = append(entries, e)
		}
	}
	return entries
}

// ListForRange returns the entries logged within [start, end],
// inclusive on both ends.
func (s *Service) ListForRange(ctx context.Context, email string, start, end time.Time) []*Entry {
	_, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.listForRange")
	defer span.End()

	startDay, endDay := day(start), day(end)
	var entries []*Entry
	for _, e := range s.store.GetNutrition(email) {
		d := e.Day()
		if !d.Before(startDay) && !d.After(endDay) {
			entries = append(entries, e)
		}
	}
	return entries
}
