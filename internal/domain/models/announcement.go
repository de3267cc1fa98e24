// internal/domain/models/announcement.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is a time-bounded message shown on the public site.
//
// Date fields are stored as the ISO-8601 strings the staff UI submits.
// StartDate is nil when the announcement has no start bound; the field may
// be stored as null or be missing entirely (after it has been cleared).
type Announcement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message        string             `bson:"message" json:"message"`
	StartDate      *string            `bson:"start_date" json:"start_date"`
	ExpirationDate string             `bson:"expiration_date" json:"expiration_date"`

	// Audit fields
	CreatedBy string `bson:"created_by" json:"created_by"`
	CreatedAt string `bson:"created_at" json:"created_at"`
	UpdatedBy string `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt string `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HasStartDate reports whether a start bound is set.
func (a *Announcement) HasStartDate() bool {
	return a.StartDate != nil && *a.StartDate != ""
}

// StartDateValue returns the start bound, or "" when unset.
func (a *Announcement) StartDateValue() string {
	if a.StartDate == nil {
		return ""
	}
	return *a.StartDate
}
