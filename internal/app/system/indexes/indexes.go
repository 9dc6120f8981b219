// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes on users back the registration conflict semantics:
duplicate username/email surfaces as a duplicate-key error, which the user
store translates into its conflict sentinel.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureMeetings(ctx, db); err != nil {
		problems = append(problems, "meetings: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, coll.Name()+"("+name+"): "+err.Error())
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Username must be unique (case/diacritics folded via username_ci)
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		// Email must be unique across all users
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
}

func ensureMeetings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("meetings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Listing is newest-first
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_meetings_created"),
		},
		// Organiser/attendee username filters on the list query
		{
			Keys:    bson.D{{Key: "organiser.organiser_name", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_meetings_organiser_created"),
		},
		{
			Keys:    bson.D{{Key: "attendees.attendee_name", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_meetings_attendee_created"),
		},
	})
}
