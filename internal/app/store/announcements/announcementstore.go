// internal/app/store/announcements/announcementstore.go
package announcementstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/hsms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no announcement matches the id.
var ErrNotFound = errors.New("announcement not found")

// Store provides access to the announcements collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new announcement store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// UpdateInput is a partial update. Nil pointers leave the stored field
// alone. ClearStartDate removes start_date and wins over StartDate.
// UpdatedBy and UpdatedAt are always written.
type UpdateInput struct {
	Message        *string
	StartDate      *string
	ClearStartDate bool
	ExpirationDate *string

	UpdatedBy string
	UpdatedAt string
}

// HasChanges reports whether the input touches any announcement field.
func (in UpdateInput) HasChanges() bool {
	return in.Message != nil || in.StartDate != nil || in.ClearStartDate || in.ExpirationDate != nil
}

// document builds the $set/$unset update document.
func (in UpdateInput) document() bson.M {
	set := bson.M{
		"updated_by": in.UpdatedBy,
		"updated_at": in.UpdatedAt,
	}
	if in.Message != nil {
		set["message"] = *in.Message
	}
	if in.ExpirationDate != nil {
		set["expiration_date"] = *in.ExpirationDate
	}

	update := bson.M{}
	if in.ClearStartDate {
		update["$unset"] = bson.M{"start_date": ""}
	} else if in.StartDate != nil {
		set["start_date"] = *in.StartDate
	}
	update["$set"] = set
	return update
}

// List returns every announcement in natural (insertion) order.
func (s *Store) List(ctx context.Context) ([]models.Announcement, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find announcements: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Announcement, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	return out, nil
}

// GetByID returns the announcement with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Announcement{}, ErrNotFound
	}
	if err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// Create inserts a new announcement and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, fmt.Errorf("insert announcement: %w", err)
	}
	return a, nil
}

// Update applies a partial update. Returns ErrNotFound when no document
// matched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, in.document())
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an announcement. Returns ErrNotFound when nothing was
// deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
