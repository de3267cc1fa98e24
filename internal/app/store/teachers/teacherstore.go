// internal/app/store/teachers/teacherstore.go
package teacherstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/hsms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the teachers collection. Teachers are keyed by
// username (_id).
type Store struct {
	c *mongo.Collection
}

// New creates a new teacher store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teachers")}
}

// Exists reports whether a teacher with this username exists.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	err := s.c.FindOne(ctx, bson.M{"_id": username},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureExists inserts a teacher when the username is not present yet.
// Existing documents are left untouched. Returns true when a document was
// created.
func (s *Store) EnsureExists(ctx context.Context, t models.Teacher) (bool, error) {
	t.Username = strings.TrimSpace(t.Username)
	if t.Username == "" {
		return false, errors.New("teacher username is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Role == "" {
		t.Role = "teacher"
	}

	update := bson.M{
		"$setOnInsert": bson.M{
			"display_name": t.DisplayName,
			"role":         t.Role,
			"created_at":   t.CreatedAt,
		},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": t.Username}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
