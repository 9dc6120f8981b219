// internal/app/features/users/handler.go
package users

// Terminology: User Identifiers
//   - UserID / userID: the MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: the human-readable handle users register with; snapshots of it
//     end up on meetings and comments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	meetingstore "github.com/dalemusser/meethub/internal/app/store/meetings"
	userstore "github.com/dalemusser/meethub/internal/app/store/users"
	"github.com/dalemusser/meethub/internal/app/system/apierr"
	"github.com/dalemusser/meethub/internal/app/system/auth"
	"github.com/dalemusser/meethub/internal/app/system/timeouts"
	"github.com/dalemusser/meethub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Meetings *meetingstore.Store
	Tokens   *auth.TokenManager
	Log      *zap.Logger
}

// NewHandler constructs a users Handler sharing the given Mongo database,
// token manager, and logger.
func NewHandler(db *mongo.Database, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Meetings: meetingstore.New(db),
		Tokens:   tokens,
		Log:      logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse pairs a bearer token with the user it is bound to.
type authResponse struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// Register handles POST /api/users.
//
// Anonymous-callable. Duplicate username or email surfaces the store's
// uniqueness violation as a conflict error.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.Validation("malformed request body"), h.Log)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		apierr.Write(w, apierr.Validation("username, email, and password are required"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateUser) {
			apierr.Write(w, apierr.Conflict("username or email already taken"), h.Log)
			return
		}
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	token, err := h.Tokens.Sign(u.ID, u.Username)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	h.Log.Info("user registered", zap.String("username", u.Username))
	apierr.WriteJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  models.UserView{User: u, Meetings: []models.Meeting{}},
	})
}

// Login handles POST /api/login.
//
// Unknown email and wrong password both produce the same generic
// authentication error so responses do not reveal whether an account exists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.Validation("malformed request body"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrNoAccount) || errors.Is(err, userstore.ErrBadCredentials) {
			apierr.Write(w, apierr.Authentication("incorrect email or password"), h.Log)
			return
		}
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	token, err := h.Tokens.Sign(u.ID, u.Username)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	view, err := h.populate(ctx, u)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	h.Log.Info("user logged in", zap.String("username", u.Username))
	apierr.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: view})
}

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		view, err := h.populate(ctx, u)
		if err != nil {
			apierr.Write(w, apierr.Internal(err), h.Log)
			return
		}
		views = append(views, view)
	}
	apierr.WriteJSON(w, http.StatusOK, views)
}

// Get handles GET /api/users/{username}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, apierr.NotFound("user not found"), h.Log)
			return
		}
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	view, err := h.populate(ctx, *u)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, view)
}

// Me handles GET /api/me. RequireSignedIn guarantees an identity is present.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, apierr.Authentication("you need to be logged in"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, su.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, apierr.Authentication("account no longer exists"), h.Log)
			return
		}
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}

	view, err := h.populate(ctx, *u)
	if err != nil {
		apierr.Write(w, apierr.Internal(err), h.Log)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, view)
}

// populate joins a user's meeting references into embedded documents.
func (h *Handler) populate(ctx context.Context, u models.User) (models.UserView, error) {
	meetings, err := h.Meetings.GetByIDs(ctx, u.Meetings)
	if err != nil {
		return models.UserView{}, err
	}
	return models.UserView{User: u, Meetings: meetings}, nil
}
