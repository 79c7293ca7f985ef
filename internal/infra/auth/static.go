package auth

import (
	"context"

	"this-or-that/internal/domain"
)

// StaticAuthenticator resolves tokens from a fixed table. Used for local
// development and tests.
type StaticAuthenticator struct {
	users map[string]domain.User
}

func NewStaticAuthenticator(users map[string]domain.User) *StaticAuthenticator {
	copied := make(map[string]domain.User, len(users))
	for token, u := range users {
		copied[token] = u
	}
	return &StaticAuthenticator{users: copied}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (domain.User, error) {
	u, ok := a.users[token]
	if !ok || token == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	return u, nil
}
