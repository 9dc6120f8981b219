package meetingstore

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/meethub/internal/app/store/users"
	"github.com/dalemusser/meethub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validInput(title string) NewMeeting {
	return NewMeeting{
		Title:       title,
		Description: "A test meeting",
		Date:        "2026-09-15",
		Duration:    "1h",
		Location:    "Test Hall",
	}
}

func TestCreate_OrganiserIsSoleAttendee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	organiserID := primitive.NewObjectID()

	m, err := store.Create(ctx, organiserID, "alice", validInput("Board Games"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if m.Organiser.ID != organiserID || m.Organiser.OrganiserName != "alice" {
		t.Error("organiser snapshot does not match caller")
	}
	if len(m.Attendees) != 1 {
		t.Fatalf("expected exactly one attendee, got %d", len(m.Attendees))
	}
	if m.Attendees[0].ID != organiserID || m.Attendees[0].AttendeeName != "alice" {
		t.Error("initial attendee snapshot does not match organiser")
	}
	if m.Comments == nil || len(m.Comments) != 0 {
		t.Error("expected empty (non-nil) comments list")
	}
	if m.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	organiserID := primitive.NewObjectID()

	in := validInput("No Title")
	in.Title = ""
	if _, err := store.Create(ctx, organiserID, "alice", in); err == nil {
		t.Error("expected error for missing title")
	}

	in = validInput("Online Without URL")
	in.OnLine = true
	_, err := store.Create(ctx, organiserID, "alice", in)
	if !errors.Is(err, ErrOnlineNeedsURL) {
		t.Errorf("expected ErrOnlineNeedsURL, got %v", err)
	}

	in.ZoomURL = "https://zoom.example.com/j/123"
	if _, err := store.Create(ctx, organiserID, "alice", in); err != nil {
		t.Errorf("expected online meeting with URL to succeed, got %v", err)
	}
}

func TestList_FilterByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	aliceID := primitive.NewObjectID()
	bobID := primitive.NewObjectID()

	if _, err := store.Create(ctx, aliceID, "alice", validInput("Alice's Meetup")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, bobID, "bob", validInput("Bob's Meetup")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(all))
	}

	mine, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 meeting for alice, got %d", len(mine))
	}
	if mine[0].Title != "Alice's Meetup" {
		t.Errorf("unexpected meeting %q for alice", mine[0].Title)
	}

	none, err := store.List(ctx, "nobody")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no meetings for unknown user, got %d", len(none))
	}
}

func TestDeleteOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	organiserID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()

	m, err := store.Create(ctx, organiserID, "alice", validInput("Doomed Meetup"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Non-organiser delete must match nothing and touch nothing.
	if _, err := store.DeleteOwned(ctx, m.ID, strangerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-organiser delete, got %v", err)
	}
	if _, err := store.GetByID(ctx, m.ID); err != nil {
		t.Fatalf("meeting should still exist after failed delete: %v", err)
	}

	deleted, err := store.DeleteOwned(ctx, m.ID, organiserID)
	if err != nil {
		t.Fatalf("DeleteOwned failed: %v", err)
	}
	if deleted.ID != m.ID {
		t.Error("deleted meeting does not match")
	}
	if _, err := store.GetByID(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again reports not found.
	if _, err := store.DeleteOwned(ctx, m.ID, organiserID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestComments_AddAndRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	organiserID := primitive.NewObjectID()

	m, err := store.Create(ctx, organiserID, "alice", validInput("Chatty Meetup"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := store.AddComment(ctx, m.ID, "bob", "looking forward to this")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(updated.Comments))
	}
	c := updated.Comments[0]
	if c.ID.IsZero() {
		t.Error("expected server-assigned comment id")
	}
	if c.CommentAuthor != "bob" || c.CommentText != "looking forward to this" {
		t.Error("comment snapshot does not match input")
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected comment created_at to be set")
	}

	// A non-author pull is indistinguishable from a wrong id.
	if _, err := store.RemoveComment(ctx, m.ID, c.ID, "mallory"); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("expected ErrCommentNotFound for non-author remove, got %v", err)
	}
	after, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(after.Comments) != 1 {
		t.Error("failed remove must leave the comment in place")
	}

	removed, err := store.RemoveComment(ctx, m.ID, c.ID, "bob")
	if err != nil {
		t.Fatalf("RemoveComment failed: %v", err)
	}
	if len(removed.Comments) != 0 {
		t.Errorf("expected no comments after remove, got %d", len(removed.Comments))
	}
}

func TestRemoveComment_MeetingAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)

	_, err := store.RemoveComment(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "alice")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent meeting, got %v", err)
	}
}

func TestAddComment_MeetingAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)

	_, err := store.AddComment(ctx, primitive.NewObjectID(), "alice", "hello?")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent meeting, got %v", err)
	}
}

func TestGetByIDs_SkipsStaleRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	organiserID := primitive.NewObjectID()

	m, err := store.Create(ctx, organiserID, "alice", validInput("Real Meetup"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{m.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected stale ref to be skipped, got %d meetings", len(got))
	}
	if got[0].ID != m.ID {
		t.Error("resolved meeting does not match")
	}

	empty, err := store.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetByIDs with no ids failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Error("expected empty (non-nil) result for no ids")
	}
}

func TestRepairOwnerRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	meetings := New(db)
	users := userstore.New(db)

	u, err := users.Create(ctx, "alice", "alice@test.com", "pw123456")
	if err != nil {
		t.Fatalf("user Create failed: %v", err)
	}

	// Simulate an interrupted create: the meeting exists but the owner's
	// reference list was never updated.
	m, err := meetings.Create(ctx, u.ID, u.Username, validInput("Orphaned Meetup"))
	if err != nil {
		t.Fatalf("meeting Create failed: %v", err)
	}

	repaired, err := meetings.RepairOwnerRefs(ctx)
	if err != nil {
		t.Fatalf("RepairOwnerRefs failed: %v", err)
	}
	if repaired != 1 {
		t.Errorf("expected 1 repair, got %d", repaired)
	}

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Meetings) != 1 || got.Meetings[0] != m.ID {
		t.Error("expected repaired reference to the orphaned meeting")
	}

	// A second sweep finds nothing to do.
	repaired, err = meetings.RepairOwnerRefs(ctx)
	if err != nil {
		t.Fatalf("second RepairOwnerRefs failed: %v", err)
	}
	if repaired != 0 {
		t.Errorf("expected idempotent sweep, got %d repairs", repaired)
	}
}
