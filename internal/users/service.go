package users

import (
	"context"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type userStore interface {
	GetOrCreateUser(email, name string) *User
}

type goalStore interface {
	SetDailyBurnTarget(email string, target *int) *User
}

// AuthService is the sign-in boundary. There are no passwords: an email
// identifies the user, first sign-in doubles as sign-up.
type AuthService struct {
	store userStore
}

func NewAuthService(store userStore) *AuthService {
	return &AuthService{
		store: store,
	}
}

func (s *AuthService) SignInOrSignUp(ctx context.Context, email, name string) *User {
	_, span := tracing.GlobalTracer.Start(ctx, "service.users.signInOrSignUp")
	defer span.End()
	span.SetAttributes(attribute.String("email", email))

	return s.store.GetOrCreateUser(email, name)
}

// GoalService mutates a user's owned goal, through the store so the
// write is synchronized with concurrent readers.
type GoalService struct {
	store goalStore
}

func NewGoalService(store goalStore) *GoalService {
	return &GoalService{
		store: store,
	}
}

// SetDailyBurn sets the daily burn target in kilocalories, nil clears
// the goal. Any integer is accepted. Returns the updated user.
func (s *GoalService) SetDailyBurn(ctx context.Context, email string, target *int) *User {
	_, span := tracing.GlobalTracer.Start(ctx, "service.users.setDailyBurn")
	defer span.End()

	user := s.store.SetDailyBurnTarget(email, target)
	if target == nil {
		log.Debugf("daily burn target of %s cleared", email)
	} else {
		log.Debugf("daily burn target of %s set to %d", email, *target)
	}
	return user
}
