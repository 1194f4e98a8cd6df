package workouts

import (
	"context"
	"sort"
	"time"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Analyzer holds the read-side aggregations over a user's workout log.
// All methods are pure functions of the log contents.
type Analyzer struct {
	store workoutsStore
}

func NewAnalyzer(store workoutsStore) *Analyzer {
	return &Analyzer{
		store: store,
	}
}

// DailyBurned sums the estimated calories of all workouts started on the
// given calendar date. Time of day is ignored.
func (a *Analyzer) DailyBurned(ctx context.Context, email string, date time.Time) int {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.dailyBurned")
	defer span.End()

	day := Day(date)
	burned := 0
	for _, w := range a.store.GetWorkouts(email) {
		if w.Day().Equal(day) {
			burned += w.EstimatedCalories
		}
	}

	span.SetAttributes(attribute.Int("burned", burned))
	return burned
}

// ListForRange returns the workouts started within [start, end],
// inclusive on both ends, in log (insertion) order.
func (a *Analyzer) ListForRange(ctx context.Context, email string, start, end time.Time) []*Workout {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.listForRange")
	defer span.End()

	startDay, endDay := Day(start), Day(end)
	var inRange []*Workout
	for _, w := range a.store.GetWorkouts(email) {
		day := w.Day()
		if !day.Before(startDay) && !day.After(endDay) {
			inRange = append(inRange, w)
		}
	}
	return inRange
}

// DistinctDays returns the set of calendar dates with at least one
// workout, most recent first. Same-day workouts collapse to one entry.
func (a *Analyzer) DistinctDays(ctx context.Context, email string) []time.Time {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.distinctDays")
	defer span.End()

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, w := range a.store.GetWorkouts(email) {
		day := w.Day()
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})
	return days
}

// DayDetail returns the workouts of the given date ordered by start
// time. Workouts starting in the same minute keep their original
// insertion order (stable sort), so repeated calls always produce the
// same listing.
func (a *Analyzer) DayDetail(ctx context.Context, email string, date time.Time) []*Workout {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.dayDetail")
	defer span.End()

	day := Day(date)
	var dayWorkouts []*Workout
	for _, w := range a.store.GetWorkouts(email) {
		if w.Day().Equal(day) {
			dayWorkouts = append(dayWorkouts, w)
		}
	}

	sort.SliceStable(dayWorkouts, func(i, j int) bool {
		return dayWorkouts[i].StartedAt.Before(dayWorkouts[j].StartedAt)
	})
	return dayWorkouts
}

// WorkoutAtRow resolves the row-index display key of a day-detail view
// back to a workout: the row-th entry of DayDetail for that date.
// Row indices stay unambiguous even when two workouts start in the same
// minute, which is why lookups go by row and not by re-filtering on the
// formatted start minute.
func (a *Analyzer) WorkoutAtRow(ctx context.Context, email string, date time.Time, row int) (*Workout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.workoutAtRow")
	defer span.End()

	dayWorkouts := a.DayDetail(ctx, email, date)
	if row < 0 || row >= len(dayWorkouts) {
		return nil, ErrWorkoutNotFound
	}
	return dayWorkouts[row], nil
}

// FindByStartMinute returns all workouts of the date whose start time,
// truncated to the minute, formats to the given "15:04" display string.
// More than one match is possible, callers wanting a single record
// should use WorkoutAtRow.
func (a *Analyzer) FindByStartMinute(ctx context.Context, email string, date time.Time, startMinute string) []*Workout {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.findByStartMinute")
	defer span.End()

	var matches []*Workout
	for _, w := range a.DayDetail(ctx, email, date) {
		if w.StartMinute() == startMinute {
			matches = append(matches, w)
		}
	}
	return matches
}
