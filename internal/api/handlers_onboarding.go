package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/api/respond"
	"github.com/aurasense/aurasense-server/internal/api/validate"
	"github.com/aurasense/aurasense-server/internal/auth"
	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/onboarding"
	"github.com/aurasense/aurasense-server/internal/session"
)

// Synthesizer is the optional text-to-speech capability. A nil synthesizer or
// a failed synthesis degrades every response to text-only.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OnboardingHandler drives onboarding turns over HTTP and WebSocket.
type OnboardingHandler struct {
	engine   *onboarding.Engine
	sessions *session.Store
	authz    auth.Authorizer
	synth    Synthesizer
	log      zerolog.Logger
}

func NewOnboardingHandler(engine *onboarding.Engine, sessions *session.Store, authz auth.Authorizer, synth Synthesizer, log zerolog.Logger) *OnboardingHandler {
	return &OnboardingHandler{engine: engine, sessions: sessions, authz: authz, synth: synth, log: log}
}

type turnRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text,omitempty"`
	// Audio is base64-encoded raw audio bytes.
	Audio     string `json:"audio,omitempty"`
	WantAudio bool   `json:"wantAudio,omitempty"`
}

type turnResponse struct {
	SessionID         string                 `json:"sessionId"`
	Response          string                 `json:"response"`
	Audio             string                 `json:"audio,omitempty"`
	Status            model.OnboardingStatus `json:"status"`
	CompletionPercent int                    `json:"completionPercent"`
	Done              bool                   `json:"done"`
	Error             string                 `json:"error,omitempty"`
}

type startResponse struct {
	SessionID string                 `json:"sessionId"`
	Greeting  string                 `json:"greeting"`
	Status    model.OnboardingStatus `json:"status"`
}

// StartOnboarding creates a fresh conversation seeded from the durable record
// and returns its session id plus a personalized greeting.
func (h *OnboardingHandler) StartOnboarding(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}

	sessionID := uuid.New().String()
	st := model.NewConversationState(sessionID, user)
	if err := h.sessions.Save(r.Context(), user.UserID, sessionID, st); err != nil {
		h.log.Warn().Err(err).Str("session", sessionID).Msg("saving fresh session failed")
	}

	respond.WriteJSON(w, http.StatusCreated, startResponse{
		SessionID: sessionID,
		Greeting:  greeting(user),
		Status:    st.Status,
	})
}

// ProcessTurn accepts one utterance (text or base64 audio) and returns the
// engine's response for it.
func (h *OnboardingHandler) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var in turnRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if in.SessionID == "" {
		in.SessionID = uuid.New().String()
	} else if err := validate.SessionID(in.SessionID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	input := model.TurnInput{Text: strings.TrimSpace(in.Text)}
	if in.Audio != "" {
		audio, err := base64.StdEncoding.DecodeString(in.Audio)
		if err != nil {
			respond.WriteBadRequest(w, "audio must be base64-encoded")
			return
		}
		input.Audio = audio
	}

	res, audio := h.runTurn(r.Context(), user, in.SessionID, input, in.WantAudio)

	out := turnResponse{
		SessionID:         in.SessionID,
		Response:          res.Response,
		Status:            res.Status,
		CompletionPercent: res.CompletionPercent,
		Done:              res.Done,
		Error:             res.Error,
	}
	if len(audio) > 0 {
		out.Audio = base64.StdEncoding.EncodeToString(audio)
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// StopOnboarding deletes the session; the conversation can be restarted later
// seeded from whatever the durable record holds by then.
func (h *OnboardingHandler) StopOnboarding(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)["sessionId"]
	if err := validate.SessionID(sessionID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.sessions.Delete(r.Context(), user.UserID, sessionID); err != nil {
		respond.WriteInternalError(w, "failed to stop session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runTurn is the shared turn-driving path for HTTP and WebSocket: load or
// seed the conversation, run the engine, persist or clean up the session, and
// optionally synthesize the reply. Session-store failures degrade, they never
// abort a turn that has produced its text outcome.
func (h *OnboardingHandler) runTurn(ctx context.Context, user *model.User, sessionID string, input model.TurnInput, wantAudio bool) (model.TurnResult, []byte) {
	st, err := h.sessions.Load(ctx, user.UserID, sessionID)
	if err != nil {
		h.log.Warn().Err(err).Str("session", sessionID).Msg("session load failed; starting fresh")
	}
	if st == nil {
		st = model.NewConversationState(sessionID, user)
	}

	res := h.engine.RunTurn(ctx, st, input)

	if res.Done {
		if err := h.sessions.Delete(ctx, user.UserID, sessionID); err != nil {
			h.log.Warn().Err(err).Str("session", sessionID).Msg("terminal session cleanup failed")
		}
	} else if err := h.sessions.Save(ctx, user.UserID, sessionID, st); err != nil {
		h.log.Warn().Err(err).Str("session", sessionID).Msg("session save failed; conversation may not resume")
	}

	var audio []byte
	if wantAudio && h.synth != nil && res.Response != "" {
		audio, err = h.synth.Synthesize(ctx, res.Response)
		if err != nil {
			h.log.Warn().Err(err).Str("session", sessionID).Msg("synthesis failed; returning text only")
			audio = nil
		}
	}
	return res, audio
}

func (h *OnboardingHandler) authorize(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, err := h.authz.Authorize(r.Context(), bearerToken(r))
	if err != nil {
		respond.WriteUnauthorized(w, "invalid or missing token")
		return nil, false
	}
	return user, true
}

func bearerToken(r *http.Request) string {
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

func greeting(u *model.User) string {
	if u != nil && u.FirstName != "" {
		return "Hi " + u.FirstName + "! Welcome to Aurasense onboarding. I'll help you personalize your experience by learning about your preferences. Let's get started!"
	}
	return "Welcome to Aurasense onboarding! I'll help you personalize your experience by learning about your preferences. Let's get started!"
}
