package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Deterministic base questions, one per catalog field (plus the identity
// fields a conversation may still need). These are always available and are
// the correctness baseline; restyling is a pure enhancement.
var baseQuestions = map[string]string{
	"email":                "What's your email address? I need it to link this conversation to your account.",
	"phone":                "What's your phone number? This helps us send you important updates.",
	"age":                  "How old are you? This helps us provide age-appropriate recommendations.",
	"dietary_restrictions": "Do you have any dietary restrictions? For example, vegetarian, vegan, gluten-free, etc.",
	"cuisine_preferences":  "What are your favorite types of cuisine? Tell me about the foods you love!",
	"price_range":          "What's your preferred price range when dining out? Budget-friendly, mid-range, premium, or luxury?",
	"is_tourist":           "Are you visiting this area as a tourist, or do you live here?",
	"cultural_background":  "What's your cultural background? This helps us recommend authentic experiences.",
	"food_allergies":       "Do you have any food allergies I should know about?",
	"spice_tolerance":      "How much spice can you handle? Rate from 1 (mild) to 5 (very spicy).",
	"preferred_languages":  "What languages do you prefer to communicate in?",
}

// FallbackQuestion returns the deterministic base question for a field.
func FallbackQuestion(field string) string {
	if q, ok := baseQuestions[field]; ok {
		return q
	}
	return fmt.Sprintf("Please tell me about your %s.", strings.ReplaceAll(field, "_", " "))
}

// QuestionGenerator produces the next prompt for a missing field. Restyling
// via the completion service and the deterministic fallback are two separate
// calls composed explicitly in Next, not selected by error suppression.
type QuestionGenerator struct {
	llm Completer
	log zerolog.Logger
}

func NewQuestionGenerator(llm Completer, log zerolog.Logger) *QuestionGenerator {
	return &QuestionGenerator{llm: llm, log: log}
}

// Next returns the question to ask for missingField. When the known context
// is rich enough to personalize, it attempts a conversational restyle; any
// restyle failure falls back unconditionally to the base question.
func (g *QuestionGenerator) Next(ctx context.Context, missingField string, contextFields map[string]any) string {
	base := FallbackQuestion(missingField)
	if !hasRestyleContext(contextFields) {
		return base
	}
	if styled, ok := g.TryRestyle(ctx, missingField, base, contextFields); ok {
		return styled
	}
	return base
}

// TryRestyle asks the completion service to personalize the base question.
// The boolean result is false on any failure or unusable output.
func (g *QuestionGenerator) TryRestyle(ctx context.Context, field, base string, contextFields map[string]any) (string, bool) {
	if g.llm == nil {
		return "", false
	}
	styled, err := g.llm.Complete(ctx, restylePrompt(field, base, contextFields))
	if err != nil {
		g.log.Debug().Err(err).Str("field", field).Msg("question restyle failed; using base question")
		return "", false
	}
	styled = strings.TrimSpace(styled)
	// Reject degenerate output; a one-word or essay-length "question" is
	// worse than the deterministic baseline.
	if styled == "" || len(styled) < 10 || len(styled) > 500 {
		return "", false
	}
	return styled, true
}

// hasRestyleContext reports whether the known fields identify the user well
// enough for personalization: a known first name, or several answered fields.
func hasRestyleContext(contextFields map[string]any) bool {
	if name, ok := contextFields["first_name"].(string); ok && name != "" {
		return true
	}
	known := 0
	for _, f := range requiredFields {
		if IsPresent(f, contextFields[f]) {
			known++
		}
	}
	return known >= 4
}

func restylePrompt(field, base string, contextFields map[string]any) string {
	var b strings.Builder
	b.WriteString("Rewrite the onboarding question below so it sounds warm and conversational.\n")
	if name, ok := contextFields["first_name"].(string); ok && name != "" {
		b.WriteString("Address the user by first name: ")
		b.WriteString(name)
		b.WriteString(".\n")
	}
	b.WriteString("Keep the exact information need (")
	b.WriteString(strings.ReplaceAll(field, "_", " "))
	b.WriteString(") and any answer options. Return only the rewritten question, no extra text.\n\nQUESTION: ")
	b.WriteString(base)
	return b.String()
}
