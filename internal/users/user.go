package users

// Goal is owned by exactly one user and is only ever mutated through
// the goal service. A nil target means "no goal set".
type Goal struct {
	DailyBurnTarget *int `json:"dailyBurnTarget,omitempty"`
}

// User is keyed by an opaque email string. The display name is applied
// on first creation only, the get-or-create contract never renames.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Goal  *Goal  `json:"goal"`
}

func NewUser(email, name string) *User {
	return &User{
		Email: email,
		Name:  name,
		Goal:  &Goal{},
	}
}

// Copy returns a detached copy of the user, goal included. The goal
// target is mutable, sharing a user pointer across goroutine
// boundaries is not safe.
func (u *User) Copy() *User {
	c := *u
	if u.Goal != nil {
		goal := *u.Goal
		if u.Goal.DailyBurnTarget != nil {
			target := *u.Goal.DailyBurnTarget
			goal.DailyBurnTarget = &target
		}
		c.Goal = &goal
	}
	return &c
}

// Remaining gives the kilocalories still to burn for the day.
// Overshooting the target clamps to zero, never negative.
func Remaining(target, burned int) int {
	if remaining := target - burned; remaining > 0 {
		return remaining
	}
	return 0
}
