package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/meethub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Chained calls accumulate params on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
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

// CreateUser inserts a user with the given username and email. The password
// is always "password123" hashed at the cheapest bcrypt cost.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      email,
		Password:   string(hash),
		Meetings:   []primitive.ObjectID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMeeting inserts a meeting organised by the given user and links it
// into the user's meeting references, mirroring what a successful create
// operation leaves behind.
func (f *Fixtures) CreateMeeting(ctx context.Context, organiser models.User, title string) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Meeting{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "A test meeting",
		Date:        "2026-09-15",
		Duration:    "1h",
		Location:    "Test Hall",
		Organiser: models.Host{
			ID:            organiser.ID,
			OrganiserName: organiser.Username,
		},
		Attendees: []models.Attendee{
			{ID: organiser.ID, AttendeeName: organiser.Username},
		},
		Comments:  []models.Comment{},
		CreatedAt: now,
	}

	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}

	_, err := f.db.Collection("users").UpdateByID(ctx, organiser.ID,
		bson.M{"$addToSet": bson.M{"meetings": m.ID}})
	if err != nil {
		f.t.Fatalf("failed to link test meeting to organiser: %v", err)
	}
	return m
}
