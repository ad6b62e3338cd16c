package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Completer is the external text-completion capability consumed by the
// extractor and the question generator.
type Completer interface {
	// Complete returns free-text output for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON returns a single JSON object for a prompt.
	CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}

// extractionSchema constrains the structured output returned by the
// completion service. Anything that fails validation is discarded wholesale.
const extractionSchema = `{
  "type": "object",
  "properties": {
    "email":                {"type": ["string", "null"]},
    "first_name":           {"type": ["string", "null"]},
    "last_name":            {"type": ["string", "null"]},
    "username":             {"type": ["string", "null"]},
    "phone":                {"type": ["string", "null"]},
    "age":                  {"type": ["integer", "null"], "minimum": 0, "maximum": 150},
    "dietary_restrictions": {"type": ["array", "null"], "items": {"type": "string"}},
    "cuisine_preferences":  {"type": ["array", "null"], "items": {"type": "string"}},
    "price_range":          {"type": ["string", "null"], "enum": ["budget", "mid-range", "premium", "luxury", null]},
    "is_tourist":           {"type": ["boolean", "null"]},
    "cultural_background":  {"type": ["array", "null"], "items": {"type": "string"}},
    "food_allergies":       {"type": ["array", "null"], "items": {"type": "string"}},
    "spice_tolerance":      {"type": ["integer", "null"], "minimum": 1, "maximum": 5},
    "preferred_languages":  {"type": ["array", "null"], "items": {"type": "string"}},
    "reasoning":            {"type": ["string", "null"]}
  },
  "additionalProperties": false
}`

// Extractor turns a free-form utterance into a partial field map. Every
// failure mode collapses to an empty map; "no fields extracted" is a valid,
// non-fatal outcome and is never retried within a turn.
type Extractor struct {
	llm    Completer
	schema *gojsonschema.Schema
	log    zerolog.Logger
}

func NewExtractor(llm Completer, log zerolog.Logger) *Extractor {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(extractionSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("onboarding: invalid extraction schema: %v", err))
	}
	return &Extractor{llm: llm, schema: schema, log: log}
}

// Extract invokes the completion service and post-processes the structured
// result: schema validation, normalization, and presence filtering. The
// returned map never contains explicit negatives for unmentioned fields.
func (e *Extractor) Extract(ctx context.Context, utterance string) map[string]any {
	if strings.TrimSpace(utterance) == "" {
		return map[string]any{}
	}

	raw, err := e.llm.CompleteJSON(ctx, extractionPrompt(utterance))
	if err != nil {
		e.log.Warn().Err(err).Msg("extraction completion failed; continuing with no fields")
		return map[string]any{}
	}

	res, err := e.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !res.Valid() {
		e.log.Warn().Err(err).Msg("extraction output failed schema validation; discarding")
		return map[string]any{}
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		e.log.Warn().Err(err).Msg("extraction output not decodable; discarding")
		return map[string]any{}
	}
	delete(decoded, "reasoning")

	out := map[string]any{}
	for field, v := range decoded {
		norm, ok := NormalizeField(field, v)
		if !ok {
			continue
		}
		out[field] = norm
	}
	return out
}

func extractionPrompt(utterance string) string {
	var b strings.Builder
	b.WriteString("You are an expert nutritionist and cultural food specialist. ")
	b.WriteString("Extract user information from the following text with careful reasoning.\n\n")
	b.WriteString("USER INPUT: ")
	b.WriteString(utterance)
	b.WriteString("\n\nEXTRACTION RULES:\n")
	b.WriteString("1. Only extract information that is explicitly mentioned or clearly implied.\n")
	b.WriteString("2. Dietary restrictions: vegetarian, vegan, gluten-free, lactose-free, kosher, halal, keto, paleo, low-carb, diabetic, etc.\n")
	b.WriteString("3. Cuisine preferences: italian, chinese, mexican, indian, japanese, mediterranean, etc. (lowercase).\n")
	b.WriteString("4. Food allergies: nuts, shellfish, dairy, eggs, soy, wheat, fish, etc.\n")
	b.WriteString("5. Cultural or religious restrictions: pork restriction, beef restriction, alcohol restriction, etc.\n")
	b.WriteString("6. Spice tolerance keywords map to a 1-5 scale: mild=1..2, medium=3, spicy=4, very spicy=5.\n")
	b.WriteString("7. Price preferences map to exactly one of: budget, mid-range, premium, luxury.\n")
	b.WriteString("8. Age is a number between 0 and 150.\n")
	b.WriteString("9. Tourist status comes from travel-related mentions (boolean).\n")
	b.WriteString("10. Preferred languages are ISO 639-1 codes when identifiable.\n\n")
	b.WriteString("Respond with a single JSON object whose keys are: email, first_name, last_name, username, phone, age, ")
	b.WriteString("dietary_restrictions, cuisine_preferences, price_range, is_tourist, cultural_background, food_allergies, ")
	b.WriteString("spice_tolerance, preferred_languages. Use null for anything not mentioned. No prose outside the JSON.")
	return b.String()
}
