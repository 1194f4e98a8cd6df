package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dkovacevic/fittrack/internal/workouts"

	log "github.com/sirupsen/logrus"
)

// FileAdapter persists the workouts-by-user map as a JSON file. The
// file shape is an implementation detail of this adapter, nothing else
// depends on it.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{
		path: path,
	}
}

// Save writes the whole collection. The write goes through a temp file
// and a rename, a failed save never corrupts the previous file.
func (a *FileAdapter) Save(workoutsByUser map[string][]*workouts.Workout) error {
	data, err := json.MarshalIndent(workoutsByUser, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workouts: %w", err)
	}

	tmpPath := a.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write workouts file: %w", err)
	}
	if err := os.Rename(tmpPath, a.path); err != nil {
		return fmt.Errorf("rename workouts file: %w", err)
	}

	return nil
}

// Load reads the persisted collection back. Load is fail-open: a
// missing or malformed file yields an empty map, never an error, the
// service starts with whatever could be recovered.
func (a *FileAdapter) Load() map[string][]*workouts.Workout {
	empty := map[string][]*workouts.Workout{}

	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("load workouts file %s: %s", a.path, err)
		}
		return empty
	}

	var workoutsByUser map[string][]*workouts.Workout
	if err := json.Unmarshal(data, &workoutsByUser); err != nil {
		log.Warnf("load workouts file %s, malformed content: %s", a.path, err)
		return empty
	}
	if workoutsByUser == nil {
		return empty
	}

	return workoutsByUser
}
