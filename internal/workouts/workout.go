package workouts

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType can be one of:
//   - run, walk, cycle, swim (cardio, tracked via distance)
//   - lift (strength, tracked via exercise/sets/reps)
type ActivityType string

const (
	ActivityRun   ActivityType = "run"
	ActivityWalk  ActivityType = "walk"
	ActivityCycle ActivityType = "cycle"
	ActivitySwim  ActivityType = "swim"
	ActivityLift  ActivityType = "lift"
)

func (at ActivityType) String() string {
	return string(at)
}

func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityRun, ActivityWalk, ActivityCycle, ActivitySwim, ActivityLift:
		return true
	default:
		return false
	}
}

// IsCardio reports whether the activity is distance-based.
// Everything except lifting counts as cardio.
func (at ActivityType) IsCardio() bool {
	return at.IsValid() && at != ActivityLift
}

type DistanceUnit string

const (
	DistanceUnitMiles DistanceUnit = "miles"
	DistanceUnitSteps DistanceUnit = "steps"
)

// Distance is a tagged value: the unit decides whether Miles or Steps
// carries the measurement, the other one stays zero. Use the two
// constructors below instead of filling the struct by hand.
type Distance struct {
	Unit  DistanceUnit `json:"unit"`
	Miles float64      `json:"miles,omitempty"`
	Steps int          `json:"steps,omitempty"`
}

func DistanceInMiles(miles float64) Distance {
	return Distance{Unit: DistanceUnitMiles, Miles: miles}
}

func DistanceInSteps(steps int) Distance {
	return Distance{Unit: DistanceUnitSteps, Steps: steps}
}

func (d Distance) IsValid() bool {
	switch d.Unit {
	case DistanceUnitMiles:
		return d.Miles >= 0 && d.Steps == 0
	case DistanceUnitSteps:
		return d.Steps >= 0 && d.Miles == 0
	default:
		return false
	}
}

type BodyPart string

const (
	BodyPartChest     BodyPart = "chest"
	BodyPartBack      BodyPart = "back"
	BodyPartLegs      BodyPart = "legs"
	BodyPartShoulders BodyPart = "shoulders"
	BodyPartArms      BodyPart = "arms"
	BodyPartCore      BodyPart = "core"
)

// IsValid also accepts the empty body part, the mobile client
// does not always send one.
func (bp BodyPart) IsValid() bool {
	switch bp {
	case BodyPartChest, BodyPartBack, BodyPartLegs,
		BodyPartShoulders, BodyPartArms, BodyPartCore, "":
		return true
	default:
		return false
	}
}

type Cardio struct {
	Distance Distance `json:"distance"`
}

type Strength struct {
	BodyPart     BodyPart `json:"bodyPart,omitempty"`
	ExerciseName string   `json:"exerciseName"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
}

// Workout is append-only: once logged it never changes,
// except for the Notes field.
// Exactly one of Cardio/Strength is set, depending on Type.
type Workout struct {
	ID                string       `json:"id"`
	Type              ActivityType `json:"type"`
	StartedAt         time.Time    `json:"startedAt"`
	DurationMin       int          `json:"durationMin"`
	EstimatedCalories int          `json:"estimatedCalories"`
	Notes             string       `json:"notes,omitempty"`

	Cardio   *Cardio   `json:"cardio,omitempty"`
	Strength *Strength `json:"strength,omitempty"`
}

func NewCardioWorkout(
	activityType ActivityType,
	startedAt time.Time,
	distance Distance,
	durationMin int,
	estimatedCalories int,
) *Workout {
	return &Workout{
		ID:                uuid.NewString(),
		Type:              activityType,
		StartedAt:         startedAt,
		DurationMin:       durationMin,
		EstimatedCalories: estimatedCalories,
		Cardio: &Cardio{
			Distance: distance,
		},
	}
}

func NewStrengthWorkout(
	startedAt time.Time,
	bodyPart BodyPart,
	exerciseName string,
	sets, reps int,
	durationMin int,
	estimatedCalories int,
) *Workout {
	return &Workout{
		ID:                uuid.NewString(),
		Type:              ActivityLift,
		StartedAt:         startedAt,
		DurationMin:       durationMin,
		EstimatedCalories: estimatedCalories,
		Strength: &Strength{
			BodyPart:     bodyPart,
			ExerciseName: exerciseName,
			Sets:         sets,
			Reps:         reps,
		},
	}
}

// Copy returns a detached copy of the workout, payload included.
// Notes is mutable after logging, sharing a workout pointer across
// goroutine boundaries is not safe.
func (w *Workout) Copy() *Workout {
	c := *w
	if w.Cardio != nil {
		cardio := *w.Cardio
		c.Cardio = &cardio
	}
	if w.Strength != nil {
		strength := *w.Strength
		c.Strength = &strength
	}
	return &c
}

// Day returns the calendar date of the workout start,
// normalized to UTC midnight so dates compare with ==.
func (w *Workout) Day() time.Time {
	return Day(w.StartedAt)
}

// StartMinute is the start time of day with minute precision,
// the display key used by day-detail views.
func (w *Workout) StartMinute() string {
	return w.StartedAt.Format("15:04")
}

// Day normalizes a timestamp to its calendar date (UTC midnight).
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
