package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProduct creates a test product with the given per-group capacity.
func (f *Fixtures) CreateProduct(ctx context.Context, name string, maxUsers int) models.Product {
	f.t.Helper()

	now := time.Now().UTC()
	product := models.Product{
		ID:         primitive.NewObjectID(),
		AuthorID:   primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		StartDate:  now.Add(7 * 24 * time.Hour),
		PriceCents: 19900,
		MinUsers:   1,
		MaxUsers:   maxUsers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("products").InsertOne(ctx, product); err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateLesson creates a test lesson inside a product.
func (f *Fixtures) CreateLesson(ctx context.Context, productID primitive.ObjectID, name string) models.Lesson {
	f.t.Helper()

	now := time.Now().UTC()
	lesson := models.Lesson{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Name:      name,
		VideoURL:  "https://videos.example.com/" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("lessons").InsertOne(ctx, lesson); err != nil {
		f.t.Fatalf("failed to create test lesson: %v", err)
	}
	return lesson
}

// CreateGroup creates a test group inside a product.
func (f *Fixtures) CreateGroup(ctx context.Context, productID primitive.ObjectID, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateAccessGrant records product access for a user.
func (f *Fixtures) CreateAccessGrant(ctx context.Context, userID, productID primitive.ObjectID) models.AccessGrant {
	f.t.Helper()

	grant := models.AccessGrant{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ProductID:   productID,
		PurchaseRef: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := f.db.Collection("access_grants").InsertOne(ctx, grant); err != nil {
		f.t.Fatalf("failed to create test access grant: %v", err)
	}
	return grant
}

// CreateMembership places a user into a group directly, bypassing the
// coordinator. For seeding occupancy in tests.
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID, productID primitive.ObjectID) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// FillGroup seeds n members into a group using fresh user IDs.
func (f *Fixtures) FillGroup(ctx context.Context, groupID, productID primitive.ObjectID, n int) {
	f.t.Helper()
	for i := 0; i < n; i++ {
		f.CreateMembership(ctx, groupID, primitive.NewObjectID(), productID)
	}
}
