package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/model"
	"github.com/aurasense/aurasense-server/internal/onboarding"
)

const (
	wsWriteTimeout = 10 * time.Second
	// Voice clients can sit quietly between utterances; the read deadline
	// only bounds a dead peer, not a thinking user.
	wsReadTimeout  = 5 * time.Minute
	wsMaxFrameSize = 10 << 20
)

// clientFrame is every message a client may send after connecting.
type clientFrame struct {
	Type  string `json:"type"` // hello | user_text | user_audio | stop
	Token string `json:"token,omitempty"`
	Text  string `json:"text,omitempty"`
	// Audio is base64-encoded raw audio bytes.
	Audio string `json:"audio,omitempty"`
}

type serverFrame struct {
	Type              string                 `json:"type"` // greeting | agent_message | onboarding_progress | error
	SessionID         string                 `json:"sessionId,omitempty"`
	Text              string                 `json:"text,omitempty"`
	Audio             string                 `json:"audio,omitempty"`
	Status            model.OnboardingStatus `json:"status,omitempty"`
	CompletionPercent int                    `json:"completionPercent,omitempty"`
	FieldsCollected   map[string]bool        `json:"fieldsCollected,omitempty"`
	Done              bool                   `json:"done,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// WSHandler serves the streaming onboarding dialogue. One connection is one
// session: the first frame must be a hello carrying the bearer token, after
// which user_text and user_audio frames each drive one engine turn.
type WSHandler struct {
	onb      *OnboardingHandler
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(onb *OnboardingHandler, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		onb: onb,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The service sits behind a gateway that enforces origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(wsMaxFrameSize)

	user, ok := h.handshake(r.Context(), conn)
	if !ok {
		return
	}

	sessionID := uuid.New().String()
	log := h.log.With().Str("session", sessionID).Str("userId", user.UserID).Logger()

	h.send(conn, serverFrame{
		Type:      "greeting",
		SessionID: sessionID,
		Text:      greeting(user),
		Status:    model.StatusPendingInfo,
	})
	h.sendProgress(conn, sessionID, model.NewConversationState(sessionID, user))

	for {
		var in clientFrame
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var input model.TurnInput
		switch in.Type {
		case "user_text":
			input.Text = in.Text
		case "user_audio":
			audio, err := base64.StdEncoding.DecodeString(in.Audio)
			if err != nil {
				h.send(conn, serverFrame{Type: "error", SessionID: sessionID, Error: "audio must be base64-encoded"})
				continue
			}
			input.Audio = audio
		case "stop":
			if err := h.onb.sessions.Delete(r.Context(), user.UserID, sessionID); err != nil {
				log.Warn().Err(err).Msg("session cleanup on stop failed")
			}
			return
		default:
			h.send(conn, serverFrame{Type: "error", SessionID: sessionID, Error: "unknown frame type: " + in.Type})
			continue
		}

		res, audio := h.onb.runTurn(r.Context(), user, sessionID, input, true)

		msg := serverFrame{
			Type:              "agent_message",
			SessionID:         sessionID,
			Text:              res.Response,
			Status:            res.Status,
			CompletionPercent: res.CompletionPercent,
			Done:              res.Done,
			Error:             res.Error,
		}
		if len(audio) > 0 {
			msg.Audio = base64.StdEncoding.EncodeToString(audio)
		}
		if !h.send(conn, msg) {
			return
		}

		if st, err := h.onb.sessions.Load(r.Context(), user.UserID, sessionID); err == nil && st != nil {
			h.sendProgress(conn, sessionID, st)
		}

		if res.Done {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(res.Status)),
				time.Now().Add(wsWriteTimeout))
			return
		}
	}
}

// handshake reads the hello frame and resolves its token to a user.
func (h *WSHandler) handshake(ctx context.Context, conn *websocket.Conn) (*model.User, bool) {
	var hello clientFrame
	_ = conn.SetReadDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "hello" {
		h.send(conn, serverFrame{Type: "error", Error: "first frame must be a hello with a token"})
		return nil, false
	}
	user, err := h.onb.authz.Authorize(ctx, hello.Token)
	if err != nil {
		h.send(conn, serverFrame{Type: "error", Error: "invalid or missing token"})
		return nil, false
	}
	return user, true
}

func (h *WSHandler) sendProgress(conn *websocket.Conn, sessionID string, st *model.ConversationState) {
	collected := make(map[string]bool, len(onboarding.RequiredFields()))
	for _, f := range onboarding.RequiredFields() {
		collected[f] = onboarding.IsPresent(f, st.Extracted[f])
	}
	h.send(conn, serverFrame{
		Type:              "onboarding_progress",
		SessionID:         sessionID,
		Status:            st.Status,
		CompletionPercent: onboarding.CompletionPercent(st.Extracted),
		FieldsCollected:   collected,
	})
}

func (h *WSHandler) send(conn *websocket.Conn, f serverFrame) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(f); err != nil {
		h.log.Warn().Err(err).Msg("websocket write failed")
		return false
	}
	return true
}
