package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/hsms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

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

// CreateTeacher inserts a teacher keyed by username.
func (f *Fixtures) CreateTeacher(ctx context.Context, username string) models.Teacher {
	f.t.Helper()

	teacher := models.Teacher{
		Username:    username,
		DisplayName: username,
		Role:        "teacher",
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("teachers").InsertOne(ctx, teacher); err != nil {
		f.t.Fatalf("failed to create test teacher: %v", err)
	}
	return teacher
}

// CreateAnnouncement inserts an announcement created by "fixture".
// A nil start leaves start_date null.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, message string, start *string, expiration string) models.Announcement {
	f.t.Helper()

	a := models.Announcement{
		ID:             primitive.NewObjectID(),
		Message:        message,
		StartDate:      start,
		ExpirationDate: expiration,
		CreatedBy:      "fixture",
		CreatedAt:      time.Now().UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	}
	if _, err := f.db.Collection("announcements").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}
	return a
}
