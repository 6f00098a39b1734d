package testutil

import (
	"net/http"

	"github.com/coursedeck/coursedeck/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// StudentUser returns a TestUser with student role.
func StudentUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Student",
		Email: "student@test.com",
		Role:  "student",
	}
}

// StudentUserWithID returns a TestUser with student role and a fixed ID,
// for tests that need the session user to match a database user.
func StudentUserWithID(id primitive.ObjectID) TestUser {
	return TestUser{
		ID:    id.Hex(),
		Name:  "Test Student",
		Email: "student@test.com",
		Role:  "student",
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers, bypassing the session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	return auth.WithTestUser(r, sessionUser)
}
