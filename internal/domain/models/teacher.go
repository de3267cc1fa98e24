// internal/domain/models/teacher.go
package models

import "time"

// Teacher is a staff account. The username is the document _id; a teacher
// document existing for a username is what lets that username manage
// announcements.
type Teacher struct {
	Username    string    `bson:"_id" json:"username"`
	DisplayName string    `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Role        string    `bson:"role,omitempty" json:"role,omitempty"` // teacher | admin
	CreatedAt   time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
}
