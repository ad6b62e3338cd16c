// Package voice is the client for the external speech services: transcription
// (speech-to-text) and synthesis (text-to-speech) over a Groq-style audio
// API. Both operations fail recoverably; synthesis failures in particular
// must never block a text response.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http        *resty.Client
	sttModel    string
	speechModel string
	speechVoice string
}

type Config struct {
	BaseURL     string
	APIKey      string
	STTModel    string
	SpeechModel string
	SpeechVoice string
}

func New(cfg Config) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &Client{
		http:        c,
		sttModel:    cfg.STTModel,
		speechModel: cfg.SpeechModel,
		speechVoice: cfg.SpeechVoice,
	}
}

// Transcribe converts audio bytes to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", "utterance.wav", bytes.NewReader(audio)).
		SetFormData(map[string]string{
			"model":           c.sttModel,
			"language":        "en",
			"temperature":     "0",
			"response_format": "text",
		}).
		Post("/openai/v1/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("transcription status %d", resp.StatusCode())
	}
	return strings.TrimSpace(string(resp.Body())), nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize converts response text to audio bytes (wav).
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&speechRequest{
			Model:          c.speechModel,
			Voice:          c.speechVoice,
			Input:          text,
			ResponseFormat: "wav",
		}).
		Post("/openai/v1/audio/speech")
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("synthesis status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
