package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
)

// ValidationError marks a workout that was rejected at the service
// boundary. The old desktop client validated inputs in the UI before
// calling in, but callers are not trusted to keep doing that.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid workout: " + e.Reason
}

func newValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

type workoutsStore interface {
	AddWorkout(email string, workout *Workout)
	GetWorkouts(email string) []*Workout
	UpdateWorkoutNotes(email, id, notes string) bool
	WorkoutsSnapshot() map[string][]*Workout
}

// saver is the persistence adapter boundary: the full workouts-by-user
// map is written out after every logged workout.
type saver interface {
	Save(workoutsByUser map[string][]*Workout) error
}

type Service struct {
	store workoutsStore
	saver saver
}

func NewService(store workoutsStore, saver saver) *Service {
	return &Service{
		store: store,
		saver: saver,
	}
}

// LogWorkout validates and appends the workout to the user's log, then
// writes the whole collection through the persistence adapter. A failed
// write-through does not undo the append: the workout stays logged and
// the error is returned for the caller to surface or ignore.
func (s *Service) LogWorkout(ctx context.Context, email string, workout *Workout) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "service.workouts.log")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := Validate(workout); err != nil {
		return err
	}

	s.store.AddWorkout(email, workout)

	if err := s.saver.Save(s.store.WorkoutsSnapshot()); err != nil {
		log.Errorf("workout %s logged, but persisting failed: %s", workout.ID, err)
		return fmt.Errorf("persist workouts: %w", err)
	}

	return nil
}

func (s *Service) ListWorkouts(ctx context.Context, email string) []*Workout {
	_, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer span.End()

	return s.store.GetWorkouts(email)
}

// UpdateNotes changes the single mutable field of a logged workout.
func (s *Service) UpdateNotes(ctx context.Context, email, workoutID, notes string) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "service.workouts.updateNotes")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !s.store.UpdateWorkoutNotes(email, workoutID, notes) {
		return ErrWorkoutNotFound
	}

	if err := s.saver.Save(s.store.WorkoutsSnapshot()); err != nil {
		log.Errorf("notes of workout %s updated, but persisting failed: %s", workoutID, err)
		return fmt.Errorf("persist workouts: %w", err)
	}

	return nil
}

func Validate(w *Workout) error {
	if w == nil {
		return newValidationError("workout empty")
	}
	if !w.Type.IsValid() {
		return newValidationError(fmt.Sprintf("unknown activity type %q", w.Type))
	}
	if w.StartedAt.IsZero() {
		return newValidationError("start time not set")
	}
	if w.DurationMin < 0 {
		return newValidationError("negative duration")
	}
	if w.EstimatedCalories < 0 {
		return newValidationError("negative calories")
	}

	if w.Type.IsCardio() {
		if w.Strength != nil {
			return newValidationError("cardio workout with strength payload")
		}
		if w.Cardio == nil {
			return newValidationError("cardio payload missing")
		}
		if !w.Cardio.Distance.IsValid() {
			return newValidationError("invalid distance")
		}
		return nil
	}

	// strength
	if w.Cardio != nil {
		return newValidationError("strength workout with cardio payload")
	}
	if w.Strength == nil {
		return newValidationError("strength payload missing")
	}
	if w.Strength.ExerciseName == "" {
		return newValidationError("exercise name empty")
	}
	if !w.Strength.BodyPart.IsValid() {
		return newValidationError(fmt.Sprintf("unknown body part %q", w.Strength.BodyPart))
	}
	if w.Strength.Sets < 1 || w.Strength.Reps < 1 {
		return newValidationError("sets and reps must be at least 1")
	}
	return nil
}
