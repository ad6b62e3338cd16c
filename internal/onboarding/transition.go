package onboarding

// Stage enumerates the dialogue graph. One turn walks the graph from
// StageTranscribe to StageEnd; the walk is single-threaded and performs no
// internal retries.
type Stage int

const (
	// StageTranscribe resolves raw audio to text (or passes text through).
	StageTranscribe Stage = iota
	// StageReconcile extracts fields from the transcript and reconciles them
	// against the durable record.
	StageReconcile
	// StageFinalize attempts the one-time is_onboarded write.
	StageFinalize
	// StageRespond produces the turn's user-visible message.
	StageRespond
	// StageEnd terminates the walk.
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageTranscribe:
		return "transcribe"
	case StageReconcile:
		return "reconcile"
	case StageFinalize:
		return "finalize"
	case StageRespond:
		return "respond"
	case StageEnd:
		return "end"
	}
	return "unknown"
}

// StepOutcome is the event produced by executing one stage.
type StepOutcome int

const (
	OutcomeOK StepOutcome = iota
	OutcomeNoInput
	OutcomeTranscribeFailed
	OutcomeNoIdentity
	OutcomeAllPresent
	OutcomeFieldsMissing
	OutcomeSaved
	OutcomeSaveFailed
)

// Transition is the pure edge function of the dialogue graph: given the stage
// just executed and its outcome, it yields the next stage. It performs no I/O
// and is tested in isolation.
func Transition(s Stage, o StepOutcome) Stage {
	switch s {
	case StageTranscribe:
		if o == OutcomeOK {
			return StageReconcile
		}
		// No input or failed transcription goes straight to the failure
		// response; extraction is never attempted on unresolved audio.
		return StageRespond
	case StageReconcile:
		if o == OutcomeAllPresent {
			return StageFinalize
		}
		return StageRespond
	case StageFinalize:
		return StageRespond
	case StageRespond:
		return StageEnd
	}
	return StageEnd
}

// NextQuestionField returns the field to ask about: question priority is
// catalog order, so the head of the missing list is always next. Because the
// durable record is authoritative and monotonic, a no-progress turn yields
// the same head and the engine never regresses to a different field while
// one is still unanswered.
func NextQuestionField(missing []string) (string, bool) {
	if len(missing) == 0 {
		return "", false
	}
	return missing[0], true
}
