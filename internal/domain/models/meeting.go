// internal/domain/models/meeting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Host is the organiser snapshot captured when a meeting is created.
// It is a denormalized copy of the creator's id and username, fixed at
// creation time; a later username change does not update it.
type Host struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	OrganiserName string             `bson:"organiser_name" json:"organiser_name"`
}

// Attendee is a user snapshot embedded on a meeting's attendee list.
type Attendee struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	AttendeeName string             `bson:"attendee_name" json:"attendee_name"`
}

// Comment is embedded on a meeting. ID and CreatedAt are server-assigned;
// CommentAuthor is a username snapshot used for removal authorization.
type Comment struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	CommentText   string             `bson:"comment_text" json:"comment_text"`
	CommentAuthor string             `bson:"comment_author" json:"comment_author"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// Meeting is an event record with embedded organiser/attendee snapshots and
// comments. Created only by an authenticated user, who becomes the organiser
// and the sole initial attendee.
type Meeting struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Date         string             `bson:"date" json:"date"`
	Duration     string             `bson:"duration" json:"duration"`
	MeetingPhoto string             `bson:"meeting_photo,omitempty" json:"meeting_photo,omitempty"`
	Location     string             `bson:"location" json:"location"`

	OnLine          bool   `bson:"online" json:"online"`
	ZoomURL         string `bson:"zoom_url,omitempty" json:"zoom_url,omitempty"`
	AcceptsDonation bool   `bson:"accepts_donation" json:"accepts_donation"`

	Organiser Host       `bson:"organiser" json:"organiser"`
	Attendees []Attendee `bson:"attendees" json:"attendees"`
	Comments  []Comment  `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
