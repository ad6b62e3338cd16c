package onboarding

import (
	"context"
	"encoding/json"
	"errors"
)

// fakeCompleter scripts the completion service. Each CompleteJSON call pops
// the next scripted payload; Complete always returns text.
type fakeCompleter struct {
	jsonPayloads []string
	jsonErr      error
	jsonCalls    int

	text    string
	textErr error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	f.jsonCalls++
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	if len(f.jsonPayloads) == 0 {
		return json.RawMessage(`{}`), nil
	}
	payload := f.jsonPayloads[0]
	if len(f.jsonPayloads) > 1 {
		f.jsonPayloads = f.jsonPayloads[1:]
	}
	return json.RawMessage(payload), nil
}

// fakeTranscriber scripts speech-to-text.
type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

var errScripted = errors.New("scripted failure")
