package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/api/respond"
	"github.com/aurasense/aurasense-server/internal/api/validate"
	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/store"
)

// UserHandler serves registration and profile lookups against the durable
// record store.
type UserHandler struct {
	users store.Users
	log   zerolog.Logger
}

func NewUserHandler(users store.Users, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Register creates a durable user record. Identity verification happens
// upstream; this endpoint only establishes the record onboarding writes to.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validate.Email(in.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Name("firstName", in.FirstName); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	u := &model.User{
		UserID:    uuid.New().String(),
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		// Every record starts with a language so downstream services always
		// have one to render in.
		PreferredLanguages: []string{"en"},
		CreationTime:       time.Now().UTC(),
	}
	if v := strings.TrimSpace(in.Username); v != "" {
		u.Username = &v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		u.Phone = &v
	}

	created, err := h.users.Create(r.Context(), u)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			respond.WriteConflict(w, "user already exists")
			return
		}
		h.log.Error().Err(err).Str("email", in.Email).Msg("user creation failed")
		respond.WriteInternalError(w, "failed to create user")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, created)
}

// GetUser returns the durable record for the given user id.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		respond.WriteBadRequest(w, "userId is required")
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "user not found")
			return
		}
		respond.WriteInternalError(w, "failed to load user")
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
