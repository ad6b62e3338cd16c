package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurasense/aurasense-server/internal/model"
)

// Canned responses. Collaborator failures never surface raw errors to the
// user; they degrade to one of these.
const (
	msgNoInput          = "I didn't receive any input. Please try again."
	msgTranscribeFailed = "I couldn't understand your audio. Please try again."
	msgTurnFailed       = "I'm having trouble processing your information right now. Please try again."
	msgAllSet           = "Perfect! We have all the information we need to personalize your Aurasense experience."
)

// Transcriber is the external speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Engine drives one conversational turn to completion: transcribe, extract,
// reconcile, decide, respond. It never returns an error to the transport; any
// failure becomes a valid apologetic response with the error recorded on the
// conversation state.
type Engine struct {
	extractor  *Extractor
	questions  *QuestionGenerator
	reconciler *Reconciler
	stt        Transcriber
	log        zerolog.Logger
}

func NewEngine(extractor *Extractor, questions *QuestionGenerator, reconciler *Reconciler, stt Transcriber, log zerolog.Logger) *Engine {
	return &Engine{
		extractor:  extractor,
		questions:  questions,
		reconciler: reconciler,
		stt:        stt,
		log:        log,
	}
}

// RunTurn processes exactly one user utterance into exactly one response,
// mutating st in place. Terminal states are stable: once a conversation is
// onboarded or failed, further turns repeat the closing message and signal
// the transport to stop routing.
func (e *Engine) RunTurn(ctx context.Context, st *model.ConversationState, input model.TurnInput) (res model.TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("session", st.SessionID).
				Msg("turn panicked; converting to failure response")
			st.Error = fmt.Sprintf("turn panicked: %v", r)
			st.SystemResponse = msgTurnFailed
			res = e.result(st, nil)
		}
		st.UpdatedAt = time.Now().UTC()
	}()

	if st.Status.Terminal() {
		return model.TurnResult{
			Response:          st.SystemResponse,
			Status:            st.Status,
			CompletionPercent: CompletionPercent(st.Extracted),
			Done:              true,
		}
	}

	st.Error = ""
	var rec ReconcileResult
	out := OutcomeOK

	for stage := StageTranscribe; stage != StageEnd; stage = Transition(stage, out) {
		switch stage {
		case StageTranscribe:
			out = e.transcribe(ctx, st, input)
		case StageReconcile:
			out, rec = e.extractAndReconcile(ctx, st)
		case StageFinalize:
			out = e.finalize(ctx, st, rec)
		case StageRespond:
			e.respond(ctx, st, rec, out)
		}
	}

	return e.result(st, &rec)
}

func (e *Engine) transcribe(ctx context.Context, st *model.ConversationState, input model.TurnInput) StepOutcome {
	if input.Empty() {
		st.Error = "no valid input provided"
		st.SystemResponse = msgNoInput
		return OutcomeNoInput
	}
	if input.Text != "" {
		st.Transcript = input.Text
		return OutcomeOK
	}
	text, err := e.stt.Transcribe(ctx, input.Audio)
	if err != nil {
		e.log.Warn().Err(err).Str("session", st.SessionID).Msg("transcription failed")
		st.Error = "transcription failed: " + err.Error()
		st.SystemResponse = msgTranscribeFailed
		return OutcomeTranscribeFailed
	}
	st.Transcript = text
	return OutcomeOK
}

func (e *Engine) extractAndReconcile(ctx context.Context, st *model.ConversationState) (StepOutcome, ReconcileResult) {
	extracted := e.extractor.Extract(ctx, st.Transcript)

	// Adopt an extracted email as the identity key if the conversation does
	// not have one yet.
	if st.Email == "" {
		if email, ok := extracted["email"].(string); ok {
			st.Email = email
		}
	}
	if st.Email == "" {
		// No identity key anywhere; reconciliation is impossible.
		return OutcomeNoIdentity, ReconcileResult{}
	}

	rec := e.reconciler.Reconcile(ctx, st.Email, st.Extracted, extracted)
	// Carry the merged view forward as the conversation's local accumulation.
	st.Extracted = rec.Merged
	if rec.Complete {
		return OutcomeAllPresent, rec
	}
	return OutcomeFieldsMissing, rec
}

func (e *Engine) finalize(ctx context.Context, st *model.ConversationState, rec ReconcileResult) StepOutcome {
	if err := e.reconciler.CompleteOnboarding(ctx, st.Email); err != nil {
		e.log.Error().Err(err).Str("email", st.Email).Msg("marking user onboarded failed")
		st.Status = model.StatusFailed
		st.Error = "saving onboarding completion failed: " + err.Error()
		st.SystemResponse = fmt.Sprintf("Onboarding failed: %s. Please try again later.", err.Error())
		return OutcomeSaveFailed
	}
	st.Status = model.StatusOnboarded
	st.SystemResponse = congratulations(rec)
	return OutcomeSaved
}

func (e *Engine) respond(ctx context.Context, st *model.ConversationState, rec ReconcileResult, out StepOutcome) {
	switch out {
	case OutcomeFieldsMissing:
		st.Status = model.StatusPendingInfo
		field, ok := NextQuestionField(rec.Missing)
		if !ok {
			st.SystemResponse = msgAllSet
			return
		}
		st.AwaitingAction = "answer_" + field
		st.SystemResponse = e.questions.Next(ctx, field, rec.Merged)
	case OutcomeNoIdentity:
		st.Status = model.StatusPendingInfo
		st.AwaitingAction = "answer_email"
		st.SystemResponse = FallbackQuestion("email")
	default:
		// Transcription failures and terminal outcomes set their response in
		// the stage that produced them; status stays as-is.
		if st.SystemResponse == "" {
			st.SystemResponse = msgTurnFailed
		}
	}
}

func (e *Engine) result(st *model.ConversationState, rec *ReconcileResult) model.TurnResult {
	percent := CompletionPercent(st.Extracted)
	if rec != nil && rec.User != nil {
		percent = CompletionPercent(rec.User.ProfileFields())
	}
	return model.TurnResult{
		Response:          st.SystemResponse,
		Status:            st.Status,
		CompletionPercent: percent,
		Done:              st.Status.Terminal(),
		Error:             st.Error,
	}
}

func congratulations(rec ReconcileResult) string {
	if rec.User != nil && rec.User.FirstName != "" {
		return fmt.Sprintf("Congratulations, %s! Your personalization is complete. Welcome to your personalized Aurasense experience!", rec.User.FirstName)
	}
	return "Congratulations! Your personalization is complete. Welcome to your personalized Aurasense experience!"
}
