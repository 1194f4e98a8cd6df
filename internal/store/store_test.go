package store_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dkovacevic/fittrack/internal/nutrition"
	"github.com/dkovacevic/fittrack/internal/store"
	"github.com/dkovacevic/fittrack/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_GetOrCreateUser(t *testing.T) {
	s := store.New()

	email := gofakeit.Email()
	user := s.GetOrCreateUser(email, "Dusan")
	require.NotNil(t, user)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "Dusan", user.Name)
	require.NotNil(t, user.Goal)
	assert.Nil(t, user.Goal.DailyBurnTarget)

	// same email, different name: no rename, same user identity
	again := s.GetOrCreateUser(email, "Somebody Else")
	assert.Equal(t, user, again)
	assert.Equal(t, "Dusan", again.Name)

	// the returned user is a copy, mutating it does not leak into the store
	target := 500
	again.Goal.DailyBurnTarget = &target
	assert.Nil(t, s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)

	other := s.GetOrCreateUser(gofakeit.Email(), "Other")
	assert.NotEqual(t, user.Email, other.Email)
}

func TestStore_SetDailyBurnTarget(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	// creates the user on first reference
	target := 500
	user := s.SetDailyBurnTarget(email, &target)
	require.NotNil(t, user.Goal.DailyBurnTarget)
	assert.Equal(t, 500, *user.Goal.DailyBurnTarget)
	require.NotNil(t, s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)

	// the stored target is detached from the caller's pointer
	target = 900
	assert.Equal(t, 500, *s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)

	// nil clears
	user = s.SetDailyBurnTarget(email, nil)
	assert.Nil(t, user.Goal.DailyBurnTarget)
	assert.Nil(t, s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)
}

func TestStore_Workouts_AppendOrder(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	assert.Empty(t, s.GetWorkouts(email))
	assert.Empty(t, s.GetWorkouts("never@seen.com"))

	now := time.Now()
	w1 := workouts.NewCardioWorkout(workouts.ActivityRun, now, workouts.DistanceInMiles(3.1), 30, 300)
	w2 := workouts.NewStrengthWorkout(now.Add(time.Hour), workouts.BodyPartLegs, "squat", 5, 5, 45, 250)
	w3 := workouts.NewCardioWorkout(workouts.ActivityWalk, now.Add(2*time.Hour), workouts.DistanceInSteps(7000), 60, 180)

	s.AddWorkout(email, w1)
	s.AddWorkout(email, w2)
	s.AddWorkout(email, w3)

	logged := s.GetWorkouts(email)
	require.Len(t, logged, 3)
	assert.Equal(t, []*workouts.Workout{w1, w2, w3}, logged)

	// the returned slice is a copy
	logged[0] = w3
	assert.Equal(t, []*workouts.Workout{w1, w2, w3}, s.GetWorkouts(email))

	// the returned workouts are copies too: neither mutating a returned
	// workout nor a later notes update touches the other side
	logged = s.GetWorkouts(email)
	logged[1].Notes = "scribbled on the copy"
	assert.Empty(t, s.GetWorkouts(email)[1].Notes)

	s.UpdateWorkoutNotes(email, w2.ID, "store side")
	assert.Equal(t, "scribbled on the copy", logged[1].Notes)
	assert.Equal(t, "store side", s.GetWorkouts(email)[1].Notes)
}

func TestStore_UpdateWorkoutNotes(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	w := workouts.NewCardioWorkout(workouts.ActivityCycle, time.Now(), workouts.DistanceInMiles(12), 40, 350)
	s.AddWorkout(email, w)

	assert.True(t, s.UpdateWorkoutNotes(email, w.ID, "felt great"))
	assert.Equal(t, "felt great", s.GetWorkouts(email)[0].Notes)

	assert.False(t, s.UpdateWorkoutNotes(email, "no-such-id", "nope"))
	assert.False(t, s.UpdateWorkoutNotes("other@user.com", w.ID, "nope"))
}

func TestStore_Nutrition_AppendOrder(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	assert.Empty(t, s.GetNutrition(email))

	now := time.Now()
	e1 := nutrition.NewEntry(now, "Banana", 120, 107)
	e2 := nutrition.NewEntry(now.Add(time.Minute), "Egg", 60, 86)
	s.AddNutrition(email, e1)
	s.AddNutrition(email, e2)

	entries := s.GetNutrition(email)
	require.Len(t, entries, 2)
	assert.Equal(t, []*nutrition.Entry{e1, e2}, entries)
}

func TestStore_WorkoutsSnapshotAndSeed(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	w := workouts.NewCardioWorkout(workouts.ActivityRun, time.Now(), workouts.DistanceInMiles(5), 45, 400)
	s.AddWorkout(email, w)

	snapshot := s.WorkoutsSnapshot()
	require.Len(t, snapshot, 1)
	require.Len(t, snapshot[email], 1)

	// mutating the snapshot must not touch the store
	snapshot[email] = append(snapshot[email], w)
	assert.Len(t, s.GetWorkouts(email), 1)

	fresh := store.New()
	fresh.SeedWorkouts(snapshot)
	assert.Len(t, fresh.GetWorkouts(email), 2)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.AddWorkout(email, workouts.NewCardioWorkout(
				workouts.ActivityRun,
				time.Now(),
				workouts.DistanceInMiles(float64(i)),
				i, i*10,
			))
		}(i)
		go func(i int) {
			defer wg.Done()
			s.GetOrCreateUser(fmt.Sprintf("user%d@test.com", i%5), "")
			_ = s.GetWorkouts(email)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.GetWorkouts(email), 50)
}

func TestStore_ConcurrentNotesUpdateAndReads(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	w := workouts.NewCardioWorkout(workouts.ActivityRun, time.Now(), workouts.DistanceInMiles(3), 30, 300)
	s.AddWorkout(email, w)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.UpdateWorkoutNotes(email, w.ID, fmt.Sprintf("lap %d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, got := range s.GetWorkouts(email) {
				_ = got.Notes
			}
			_, _ = json.Marshal(s.WorkoutsSnapshot())
		}
	}()
	wg.Wait()

	assert.Equal(t, "lap 199", s.GetWorkouts(email)[0].Notes)
}

func TestStore_ConcurrentGoalWritesAndReads(t *testing.T) {
	s := store.New()
	email := gofakeit.Email()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			target := i
			s.SetDailyBurnTarget(email, &target)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			user := s.GetOrCreateUser(email, "")
			if user.Goal.DailyBurnTarget != nil {
				_ = *user.Goal.DailyBurnTarget
			}
			_, _ = json.Marshal(user)
		}
	}()
	wg.Wait()

	require.NotNil(t, s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)
	assert.Equal(t, 199, *s.GetOrCreateUser(email, "").Goal.DailyBurnTarget)
}
