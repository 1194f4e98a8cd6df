package auth

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	redisClient *redis.Client
}

func NewLoginChecker(redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		redisClient: redisClient,
	}
}

// LoggedUser resolves a session token to the signed-in user's email.
// Unknown or expired tokens yield ErrNotLoggedIn.
func (c *LoginChecker) LoggedUser(ctx context.Context, token string) (string, error) {
	cmd := c.redisClient.Get(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	return cmd.Val(), nil
}
