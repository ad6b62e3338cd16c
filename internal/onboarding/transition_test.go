package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name    string
		stage   Stage
		outcome StepOutcome
		want    Stage
	}{
		{"transcribed ok proceeds to reconcile", StageTranscribe, OutcomeOK, StageReconcile},
		{"no input skips extraction", StageTranscribe, OutcomeNoInput, StageRespond},
		{"failed transcription skips extraction", StageTranscribe, OutcomeTranscribeFailed, StageRespond},
		{"all present goes to finalize", StageReconcile, OutcomeAllPresent, StageFinalize},
		{"fields missing goes to respond", StageReconcile, OutcomeFieldsMissing, StageRespond},
		{"no identity goes to respond", StageReconcile, OutcomeNoIdentity, StageRespond},
		{"finalize saved goes to respond", StageFinalize, OutcomeSaved, StageRespond},
		{"finalize failed goes to respond", StageFinalize, OutcomeSaveFailed, StageRespond},
		{"respond ends the walk", StageRespond, OutcomeOK, StageEnd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Transition(tc.stage, tc.outcome))
		})
	}
}

func TestNextQuestionField(t *testing.T) {
	f, ok := NextQuestionField([]string{"price_range", "is_tourist"})
	assert.True(t, ok)
	assert.Equal(t, "price_range", f)

	_, ok = NextQuestionField(nil)
	assert.False(t, ok)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "transcribe", StageTranscribe.String())
	assert.Equal(t, "end", StageEnd.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
