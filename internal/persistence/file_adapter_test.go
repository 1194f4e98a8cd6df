package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkovacevic/fittrack/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileAdapter_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	adapter := NewFileAdapter(path)

	w := workouts.NewCardioWorkout(
		workouts.ActivityRun,
		time.Date(2025, 5, 10, 7, 30, 0, 0, time.UTC),
		workouts.DistanceInMiles(3.1),
		28, 310,
	)
	w.Notes = "morning run"
	lift := workouts.NewStrengthWorkout(
		time.Date(2025, 5, 10, 19, 0, 0, 0, time.UTC),
		workouts.BodyPartLegs, "squat", 5, 5, 45, 250,
	)

	require.NoError(t, adapter.Save(map[string][]*workouts.Workout{
		"dusan@test.com": {w, lift},
	}))

	loaded := adapter.Load()
	require.Len(t, loaded, 1)
	require.Len(t, loaded["dusan@test.com"], 2)

	gotRun := loaded["dusan@test.com"][0]
	assert.Equal(t, w.ID, gotRun.ID)
	assert.Equal(t, workouts.ActivityRun, gotRun.Type)
	assert.Equal(t, "morning run", gotRun.Notes)
	require.NotNil(t, gotRun.Cardio)
	assert.Equal(t, workouts.DistanceInMiles(3.1), gotRun.Cardio.Distance)
	assert.Nil(t, gotRun.Strength)

	gotLift := loaded["dusan@test.com"][1]
	require.NotNil(t, gotLift.Strength)
	assert.Equal(t, "squat", gotLift.Strength.ExerciseName)
	assert.Nil(t, gotLift.Cardio)

	// no leftover temp file after the rename
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileAdapter_Load_MissingFile(t *testing.T) {
	adapter := NewFileAdapter(filepath.Join(t.TempDir(), "nope.json"))

	loaded := adapter.Load()
	require.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestFileAdapter_Load_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	adapter := NewFileAdapter(path)
	loaded := adapter.Load()
	require.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestFileAdapter_Save_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.json")
	adapter := NewFileAdapter(path)

	w := workouts.NewCardioWorkout(
		workouts.ActivityWalk,
		time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC),
		workouts.DistanceInSteps(8000),
		70, 220,
	)
	require.NoError(t, adapter.Save(map[string][]*workouts.Workout{"a@test.com": {w}}))
	require.NoError(t, adapter.Save(map[string][]*workouts.Workout{}))

	assert.Empty(t, adapter.Load())
}
