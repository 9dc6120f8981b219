// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an identity record. The password field holds a bcrypt hash and is
// never serialized to JSON.
//
// NOTE:
//   - Meetings holds references (ObjectIDs) to meetings the user organizes
//     or attends. Read paths populate them into embedded Meeting documents.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash

	ProfilePhoto string               `bson:"profile_photo,omitempty" json:"profile_photo,omitempty"`
	Meetings     []primitive.ObjectID `bson:"meetings" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserView is a User plus its meeting references populated into embedded
// documents. It is the shape returned by the user read paths.
type UserView struct {
	User     `bson:",inline"`
	Meetings []Meeting `bson:"-" json:"meetings"`
}
