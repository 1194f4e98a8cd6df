package workouts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkovacevic/fittrack/internal/store"
	"github.com/dkovacevic/fittrack/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSaver struct {
	saveCalls int
	lastSaved map[string][]*workouts.Workout
	saveErr   error
}

func (f *fakeSaver) Save(workoutsByUser map[string][]*workouts.Workout) error {
	f.saveCalls++
	f.lastSaved = workoutsByUser
	return f.saveErr
}

func TestService_LogWorkout(t *testing.T) {
	s := store.New()
	saver := &fakeSaver{}
	service := workouts.NewService(s, saver)
	ctx := context.Background()

	w := workouts.NewCardioWorkout(
		workouts.ActivityRun,
		time.Date(2025, 5, 10, 7, 30, 0, 0, time.UTC),
		workouts.DistanceInMiles(3.1),
		28, 310,
	)
	require.NoError(t, service.LogWorkout(ctx, "dusan@test.com", w))

	assert.Equal(t, 1, saver.saveCalls)
	require.Len(t, saver.lastSaved["dusan@test.com"], 1)
	assert.Equal(t, w.ID, saver.lastSaved["dusan@test.com"][0].ID)

	logged := service.ListWorkouts(ctx, "dusan@test.com")
	require.Len(t, logged, 1)
	assert.Equal(t, w, logged[0])
}

func TestService_LogWorkout_Invalid(t *testing.T) {
	s := store.New()
	saver := &fakeSaver{}
	service := workouts.NewService(s, saver)
	ctx := context.Background()

	startedAt := time.Date(2025, 5, 10, 7, 30, 0, 0, time.UTC)

	for _, tc := range []struct {
		name    string
		workout *workouts.Workout
	}{
		{
			name:    "nil workout",
			workout: nil,
		},
		{
			name: "unknown activity type",
			workout: &workouts.Workout{
				ID:        "w1",
				Type:      "yoga",
				StartedAt: startedAt,
				Cardio:    &workouts.Cardio{Distance: workouts.DistanceInMiles(1)},
			},
		},
		{
			name: "start time not set",
			workout: &workouts.Workout{
				ID:     "w2",
				Type:   workouts.ActivityRun,
				Cardio: &workouts.Cardio{Distance: workouts.DistanceInMiles(1)},
			},
		},
		{
			name: "negative duration",
			workout: &workouts.Workout{
				ID:          "w3",
				Type:        workouts.ActivityRun,
				StartedAt:   startedAt,
				DurationMin: -5,
				Cardio:      &workouts.Cardio{Distance: workouts.DistanceInMiles(1)},
			},
		},
		{
			name: "cardio without payload",
			workout: &workouts.Workout{
				ID:        "w4",
				Type:      workouts.ActivitySwim,
				StartedAt: startedAt,
			},
		},
		{
			name: "cardio with strength payload",
			workout: &workouts.Workout{
				ID:        "w5",
				Type:      workouts.ActivityRun,
				StartedAt: startedAt,
				Cardio:    &workouts.Cardio{Distance: workouts.DistanceInMiles(1)},
				Strength:  &workouts.Strength{ExerciseName: "squat", Sets: 3, Reps: 10},
			},
		},
		{
			name: "strength without exercise name",
			workout: &workouts.Workout{
				ID:        "w6",
				Type:      workouts.ActivityLift,
				StartedAt: startedAt,
				Strength:  &workouts.Strength{Sets: 3, Reps: 10},
			},
		},
		{
			name: "strength with zero sets",
			workout: &workouts.Workout{
				ID:        "w7",
				Type:      workouts.ActivityLift,
				StartedAt: startedAt,
				Strength:  &workouts.Strength{ExerciseName: "bench press", Sets: 0, Reps: 10},
			},
		},
		{
			name: "distance with both units filled",
			workout: &workouts.Workout{
				ID:        "w8",
				Type:      workouts.ActivityWalk,
				StartedAt: startedAt,
				Cardio: &workouts.Cardio{
					Distance: workouts.Distance{Unit: workouts.DistanceUnitMiles, Miles: 2, Steps: 4000},
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := service.LogWorkout(ctx, "dusan@test.com", tc.workout)
			var validationErr *workouts.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}

	// nothing got logged or saved
	assert.Empty(t, service.ListWorkouts(ctx, "dusan@test.com"))
	assert.Zero(t, saver.saveCalls)
}

func TestService_LogWorkout_SaveFails(t *testing.T) {
	s := store.New()
	saver := &fakeSaver{saveErr: errors.New("disk full")}
	service := workouts.NewService(s, saver)
	ctx := context.Background()

	w := workouts.NewCardioWorkout(
		workouts.ActivityWalk,
		time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC),
		workouts.DistanceInSteps(8000),
		70, 220,
	)
	err := service.LogWorkout(ctx, "dusan@test.com", w)
	require.Error(t, err)

	// the workout stays logged, only the write-through failed
	assert.Len(t, service.ListWorkouts(ctx, "dusan@test.com"), 1)
}

func TestService_UpdateNotes(t *testing.T) {
	s := store.New()
	saver := &fakeSaver{}
	service := workouts.NewService(s, saver)
	ctx := context.Background()

	w := workouts.NewStrengthWorkout(
		time.Date(2025, 5, 10, 17, 0, 0, 0, time.UTC),
		workouts.BodyPartChest, "bench press", 4, 8, 40, 200,
	)
	require.NoError(t, service.LogWorkout(ctx, "dusan@test.com", w))

	require.NoError(t, service.UpdateNotes(ctx, "dusan@test.com", w.ID, "new PR"))
	assert.Equal(t, "new PR", service.ListWorkouts(ctx, "dusan@test.com")[0].Notes)
	assert.Equal(t, 2, saver.saveCalls)

	err := service.UpdateNotes(ctx, "dusan@test.com", "no-such-id", "nope")
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestWorkout_DayAndStartMinute(t *testing.T) {
	w := workouts.NewCardioWorkout(
		workouts.ActivityRun,
		time.Date(2025, 5, 10, 23, 59, 59, 0, time.UTC),
		workouts.DistanceInMiles(2),
		20, 200,
	)
	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), w.Day())
	assert.Equal(t, "23:59", w.StartMinute())
}
