package store

import (
	"sync"

	"github.com/dkovacevic/fittrack/internal/nutrition"
	"github.com/dkovacevic/fittrack/internal/users"
	"github.com/dkovacevic/fittrack/internal/workouts"
)

// Store is the single source of truth: user-scoped in-memory collections
// of users (1:1), workouts (1:N) and nutrition entries (1:N), all keyed
// by the user's email. Workout and nutrition logs are append-only and
// keep insertion order.
//
// The original design was single-threaded, the store itself carried no
// locking. Exposed over HTTP the callers become concurrent, hence the
// single RWMutex around all collections, and copies crossing the store
// boundary in both directions: the mutable fields (workout notes, the
// goal target) are only ever written on the store's own instances,
// under the lock.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*users.User
	workouts  map[string][]*workouts.Workout
	nutrition map[string][]*nutrition.Entry
}

func New() *Store {
	return &Store{
		users:     make(map[string]*users.User),
		workouts:  make(map[string][]*workouts.Workout),
		nutrition: make(map[string][]*nutrition.Entry),
	}
}

// GetOrCreateUser returns a copy of the user for the email, creating
// one with a fresh unset goal on first reference. Idempotent on the
// email: the name is applied on first creation only, later calls with
// a different name do not rename.
func (s *Store) GetOrCreateUser(email, name string) *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateUser(email, name).Copy()
}

// SetDailyBurnTarget sets the goal target of the user, creating the
// user on first reference, and returns a copy of the updated user.
// Nil clears the goal. The write happens under the store lock, the
// one place the goal is ever mutated.
func (s *Store) SetDailyBurnTarget(email string, target *int) *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target != nil {
		t := *target
		target = &t
	}

	user := s.getOrCreateUser(email, "")
	user.Goal.DailyBurnTarget = target
	return user.Copy()
}

// getOrCreateUser returns the store-owned instance, callers hold the lock.
func (s *Store) getOrCreateUser(email, name string) *users.User {
	if user, ok := s.users[email]; ok {
		return user
	}

	user := users.NewUser(email, name)
	s.users[email] = user
	return user
}

// AddWorkout appends a copy of the workout to the user's log, creating
// the log on first write. The workout is trusted to be fully
// constructed; the caller keeps its own instance.
func (s *Store) AddWorkout(email string, workout *workouts.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workouts[email] = append(s.workouts[email], workout.Copy())
}

func (s *Store) AddNutrition(email string, entry *nutrition.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nutrition[email] = append(s.nutrition[email], entry)
}

// GetWorkouts returns the user's workout log in insertion order, empty
// for users that never logged anything. The returned workouts are
// copies, safe to read and marshal while other callers append or
// update notes.
func (s *Store) GetWorkouts(email string) []*workouts.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyWorkouts(s.workouts[email])
}

func (s *Store) GetNutrition(email string) []*nutrition.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.nutrition[email]
	out := make([]*nutrition.Entry, len(log))
	copy(out, log)
	return out
}

// UpdateWorkoutNotes sets the notes of the workout with the given id,
// the one mutable field of an otherwise immutable record. Reports
// whether the workout was found.
func (s *Store) UpdateWorkoutNotes(email, id, notes string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.workouts[email] {
		if w.ID == id {
			w.Notes = notes
			return true
		}
	}
	return false
}

// WorkoutsSnapshot copies the whole workouts-by-user map for the
// persistence adapter, workouts included, so serializing the snapshot
// needs no lock.
func (s *Store) WorkoutsSnapshot() map[string][]*workouts.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string][]*workouts.Workout, len(s.workouts))
	for email, log := range s.workouts {
		snapshot[email] = copyWorkouts(log)
	}
	return snapshot
}

// SeedWorkouts replaces the workout collections with the loaded ones,
// used once at process start with whatever the persistence adapter
// recovered.
func (s *Store) SeedWorkouts(workoutsByUser map[string][]*workouts.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workouts = make(map[string][]*workouts.Workout, len(workoutsByUser))
	for email, log := range workoutsByUser {
		s.workouts[email] = copyWorkouts(log)
	}
}

func copyWorkouts(log []*workouts.Workout) []*workouts.Workout {
	out := make([]*workouts.Workout, len(log))
	for i, w := range log {
		out[i] = w.Copy()
	}
	return out
}
