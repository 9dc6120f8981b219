// internal/app/features/meetings/handler.go
package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	meetingstore "github.com/dalemusser/meethub/internal/app/store/meetings"
	userstore "github.com/dalemusser/meethub/internal/app/store/users"
	"github.com/dalemusser/meethub/internal/app/system/apierr"
	"github.com/dalemusser/meethub/internal/app/system/auth"
	"github.com/dalemusser/meethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meethub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Meetings *meetingstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a meetings Handler sharing the given Mongo database
// and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Meetings: meetingstore.New(db),
		Users:    userstore.New(db),
		Log:      logger,
	}
}

type createRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	Duration        string `json:"duration"`
	MeetingPhoto    string `json:"meeting_photo"`
	Location        string `json:"location"`
	OnLine          bool   `json:"online"`
	ZoomURL         string `json:"zoom_url"`
	AcceptsDonation bool   `json:"accepts_donation"`
}

type commentRequest struct {
	CommentText string `json:"comment_text"`
}

// List handles GET /api/meetings?username=. Newest first; the optional
// username filter matches organiser or attendee snapshots.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	meetings, err := h.Meetings.List(ctx, r.URL.Query().Get("username"))
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, meetings)
}

// Get handles GET /api/meetings/{meetingID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Meetings.GetByID(ctx, id)
	if err != nil {
		h.writeStoreErr(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, m)
}

// Create handles POST /api/meetings.
//
// The caller becomes the organiser snapshot and the sole initial attendee.
// The meeting insert and the owner-reference update are two sequential
// writes with no transaction: a failure between them leaves the meeting
// unreferenced until the owner sweep repairs it, and a retry of the whole
// operation may create a second meeting document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Authentication("you need to be logged in"), h.Log)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.Validation("malformed request body"), h.Log)
		return
	}
	if req.Title == "" || req.Description == "" || req.Date == "" || req.Duration == "" || req.Location == "" {
		apierr.Write(w, apierr.Validation("title, description, date, duration, and location are required"), h.Log)
		return
	}
	if req.OnLine && req.ZoomURL == "" {
		apierr.Write(w, apierr.Validation("online meetings require a zoom URL"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Meetings.Create(ctx, su.ID, su.Username, meetingstore.NewMeeting{
		Title:           req.Title,
		Description:     htmlsanitize.Sanitize(req.Description),
		Date:            req.Date,
		Duration:        req.Duration,
		MeetingPhoto:    req.MeetingPhoto,
		Location:        req.Location,
		OnLine:          req.OnLine,
		ZoomURL:         req.ZoomURL,
		AcceptsDonation: req.AcceptsDonation,
	})
	if err != nil {
		if errors.Is(err, meetingstore.ErrOnlineNeedsURL) {
			apierr.Write(w, apierr.Validation(err.Error()), h.Log)
			return
		}
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	if _, err := h.Users.AddMeetingRef(ctx, su.ID, m.ID); err != nil {
		// The meeting exists but is unreferenced; the owner sweep will
		// reconcile it. Surface the failure rather than claim success.
		h.Log.Error("owner reference update failed after meeting create",
			zap.String("meeting_id", m.ID.Hex()),
			zap.String("user_id", su.ID.Hex()),
			zap.Error(err))
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	h.Log.Info("meeting created",
		zap.String("meeting_id", m.ID.Hex()),
		zap.String("organiser", su.Username))
	apierr.WriteJSON(w, http.StatusCreated, m)
}

// Delete handles DELETE /api/meetings/{meetingID}.
//
// The delete filter includes the organiser snapshot id, so a wrong id and a
// non-organiser caller both come back as not-found with nothing touched.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Authentication("you need to be logged in"), h.Log)
		return
	}
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Meetings.DeleteOwned(ctx, id, su.ID)
	if err != nil {
		h.writeStoreErr(w, err)
		return
	}

	if err := h.Users.PullMeetingRef(ctx, su.ID, m.ID); err != nil {
		// Stale reference only: populate skips ids that no longer resolve.
		h.Log.Warn("owner reference removal failed after meeting delete",
			zap.String("meeting_id", m.ID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("meeting deleted",
		zap.String("meeting_id", m.ID.Hex()),
		zap.String("organiser", su.Username))
	apierr.WriteJSON(w, http.StatusOK, m)
}

// AddComment handles POST /api/meetings/{meetingID}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Authentication("you need to be logged in"), h.Log)
		return
	}
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.Validation("malformed request body"), h.Log)
		return
	}
	text := htmlsanitize.Sanitize(req.CommentText)
	if text == "" {
		apierr.Write(w, apierr.Validation("comment text is required"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.AddComment(ctx, id, su.Username, text)
	if err != nil {
		h.writeStoreErr(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusCreated, m)
}

// RemoveComment handles DELETE /api/meetings/{meetingID}/comments/{commentID}.
//
// Only the comment's author can remove it; a non-author caller gets the
// same not-found signal as a wrong comment id.
func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Authentication("you need to be logged in"), h.Log)
		return
	}
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}
	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		apierr.Write(w, apierr.Validation("invalid comment id"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Meetings.RemoveComment(ctx, id, commentID, su.Username)
	if err != nil {
		h.writeStoreErr(w, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, m)
}

// meetingID parses the {meetingID} route param, writing a validation error
// on failure.
func (h *Handler) meetingID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "meetingID"))
	if err != nil {
		apierr.Write(w, apierr.Validation("invalid meeting id"), h.Log)
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeStoreErr maps meeting-store sentinels onto the API error taxonomy.
func (h *Handler) writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meetingstore.ErrNotFound):
		apierr.Write(w, apierr.NotFound("meeting not found"), h.Log)
	case errors.Is(err, meetingstore.ErrCommentNotFound):
		apierr.Write(w, apierr.NotFound("comment not found or not yours"), h.Log)
	case errors.Is(err, mongo.ErrNoDocuments):
		apierr.Write(w, apierr.NotFound("meeting not found"), h.Log)
	default:
		apierr.Write(w, apierr.Internal(err), h.Log)
	}
}
