package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meethub/internal/app/system/normalize"
	"github.com/dalemusser/meethub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateUser is returned when the username or email already exists.
	ErrDuplicateUser = errors.New("a user with this username or email already exists")
	// ErrNoAccount is returned by Authenticate when no user has the email.
	ErrNoAccount = errors.New("no account with this email")
	// ErrBadCredentials is returned by Authenticate when the password check fails.
	ErrBadCredentials = errors.New("incorrect credentials")

	errMissingFields = errors.New("username, email, and password are required")
)

// Create inserts a new user after normalizing fields and hashing the
// password. Uniqueness of username/email is delegated to the collection's
// unique indexes; a duplicate surfaces as ErrDuplicateUser.
func (s *Store) Create(ctx context.Context, username, email, password string) (models.User, error) {
	username = normalize.Name(username)
	email = normalize.Email(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, errMissingFields
	}

	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      email,
		Password:   hash,
		Meetings:   []primitive.ObjectID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUser
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate looks up a user by email and verifies the password against
// the stored bcrypt hash. The two failure modes are distinct sentinels so
// tests can tell them apart; the API layer collapses both into one generic
// authentication error.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNoAccount
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return *u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username_ci": text.Fold(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users, username order.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "username_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddMeetingRef adds a meeting id to the user's reference list. The update
// is a $addToSet, so retries and the owner sweep converge on one entry.
// Reports whether the document changed.
func (s *Store) AddMeetingRef(ctx context.Context, userID, meetingID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"meetings": meetingID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// PullMeetingRef removes a meeting id from the user's reference list.
func (s *Store) PullMeetingRef(ctx context.Context, userID, meetingID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"meetings": meetingID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// hashPassword hashes a password using bcrypt with a cost of 12.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
