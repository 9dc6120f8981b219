package meetingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meethub/internal/app/system/normalize"
	"github.com/dalemusser/meethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection // owner-reference repair touches both collections
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("meetings"),
		users: db.Collection("users"),
	}
}

var (
	// ErrNotFound is returned when no meeting matches the id (or, for owned
	// operations, when the caller is not the organiser).
	ErrNotFound = errors.New("meeting not found")
	// ErrCommentNotFound is returned when a comment pull matched nothing:
	// the comment id is wrong or the caller is not its author. The meeting
	// itself exists.
	ErrCommentNotFound = errors.New("comment not found or not owned by caller")
	// ErrOnlineNeedsURL is returned when an online meeting is created
	// without a meeting URL.
	ErrOnlineNeedsURL = errors.New("online meetings require a zoom URL")

	errMissingFields = errors.New("title, description, date, duration, and location are required")
)

// NewMeeting is the validated input for Create. Optional fields default to
// their zero values; OnLine=true requires ZoomURL.
type NewMeeting struct {
	Title           string
	Description     string
	Date            string
	Duration        string
	MeetingPhoto    string
	Location        string
	OnLine          bool
	ZoomURL         string
	AcceptsDonation bool
}

// Create inserts a meeting whose organiser snapshot and sole initial
// attendee are both derived from the caller. The caller's reference-list
// update is a separate write owned by the caller of this store (see the
// users store and the owner sweep).
func (s *Store) Create(ctx context.Context, organiserID primitive.ObjectID, organiserName string, in NewMeeting) (models.Meeting, error) {
	in.Title = normalize.Name(in.Title)
	in.Location = normalize.Name(in.Location)
	if in.Title == "" || in.Description == "" || in.Date == "" || in.Duration == "" || in.Location == "" {
		return models.Meeting{}, errMissingFields
	}
	if in.OnLine && in.ZoomURL == "" {
		return models.Meeting{}, ErrOnlineNeedsURL
	}

	m := models.Meeting{
		ID:              primitive.NewObjectID(),
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		Duration:        in.Duration,
		MeetingPhoto:    in.MeetingPhoto,
		Location:        in.Location,
		OnLine:          in.OnLine,
		ZoomURL:         in.ZoomURL,
		AcceptsDonation: in.AcceptsDonation,
		Organiser:       models.Host{ID: organiserID, OrganiserName: organiserName},
		Attendees:       []models.Attendee{{ID: organiserID, AttendeeName: organiserName}},
		Comments:        []models.Comment{},
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// GetByID loads a meeting by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Meeting, error) {
	var m models.Meeting
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByIDs loads the meetings for a reference list, newest first. Missing
// ids are skipped, so a stale reference never fails a populate.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Meeting, error) {
	if len(ids) == 0 {
		return []models.Meeting{}, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	meetings := []models.Meeting{}
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// List returns meetings newest first. A non-empty username restricts the
// result to meetings the user organizes or attends, matched against the
// stored snapshots.
func (s *Store) List(ctx context.Context, username string) ([]models.Meeting, error) {
	filter := bson.M{}
	if username != "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"organiser.organiser_name": username},
			bson.M{"attendees.attendee_name": username},
		}}
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	meetings := []models.Meeting{}
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// DeleteOwned deletes a meeting only when organiserID matches the organiser
// snapshot. A wrong id and a wrong owner are indistinguishable by design:
// both return ErrNotFound and nothing is touched.
func (s *Store) DeleteOwned(ctx context.Context, meetingID, organiserID primitive.ObjectID) (*models.Meeting, error) {
	var m models.Meeting
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"_id":           meetingID,
		"organiser._id": organiserID,
	}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// AddComment appends a comment with a server-assigned id and timestamp and
// returns the updated meeting. The append is a single $addToSet against the
// current persisted state, so concurrent additions from different callers
// both land, in append order.
func (s *Store) AddComment(ctx context.Context, meetingID primitive.ObjectID, author, text string) (*models.Meeting, error) {
	if text == "" {
		return nil, errors.New("comment text is required")
	}
	comment := models.Comment{
		ID:            primitive.NewObjectID(),
		CommentText:   text,
		CommentAuthor: author,
		CreatedAt:     time.Now().UTC(),
	}

	var m models.Meeting
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": meetingID},
		bson.M{"$addToSet": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// RemoveComment pulls the comment matching both the id and the caller's
// username snapshot, then returns the updated meeting. A pull that matches
// nothing is surfaced as ErrCommentNotFound (meeting exists) or ErrNotFound
// (meeting absent) instead of echoing the unchanged document.
func (s *Store) RemoveComment(ctx context.Context, meetingID, commentID primitive.ObjectID, author string) (*models.Meeting, error) {
	match := bson.M{"_id": commentID, "comment_author": author}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": meetingID, "comments": bson.M{"$elemMatch": match}},
		bson.M{"$pull": bson.M{"comments": match}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, meetingID); err != nil {
			return nil, err // ErrNotFound or a driver error
		}
		return nil, ErrCommentNotFound
	}
	return s.GetByID(ctx, meetingID)
}

// RepairOwnerRefs re-adds meeting ids missing from their organiser's
// reference list. Used by the owner sweep to close the non-transactional
// create window; each repair is a $addToSet and therefore idempotent.
func (s *Store) RepairOwnerRefs(ctx context.Context) (int64, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "organiser._id": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var repaired int64
	for cur.Next(ctx) {
		var ref struct {
			ID        primitive.ObjectID `bson:"_id"`
			Organiser struct {
				ID primitive.ObjectID `bson:"_id"`
			} `bson:"organiser"`
		}
		if err := cur.Decode(&ref); err != nil {
			return repaired, err
		}
		res, err := s.users.UpdateOne(ctx,
			bson.M{"_id": ref.Organiser.ID, "meetings": bson.M{"$ne": ref.ID}},
			bson.M{"$addToSet": bson.M{"meetings": ref.ID}})
		if err != nil {
			return repaired, err
		}
		repaired += res.ModifiedCount
	}
	return repaired, cur.Err()
}
