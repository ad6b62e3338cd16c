package onboarding

import "strings"

// The catalog order is stable and defines default question priority: the
// first missing field in this order is always asked next.
var requiredFields = []string{
	"age",
	"dietary_restrictions",
	"cuisine_preferences",
	"price_range",
	"is_tourist",
	"cultural_background",
	"food_allergies",
	"spice_tolerance",
	"preferred_languages",
}

var priceRanges = map[string]bool{
	"budget":    true,
	"mid-range": true,
	"premium":   true,
	"luxury":    true,
}

// RequiredFields returns the onboarding-required profile fields in question
// priority order.
func RequiredFields() []string {
	out := make([]string, len(requiredFields))
	copy(out, requiredFields)
	return out
}

// IsCatalogField reports whether name is one of the tracked onboarding fields.
func IsCatalogField(name string) bool {
	for _, f := range requiredFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsPresent applies the single presence rule used by both extraction
// filtering and missing-field computation: a field is present iff its value
// is non-nil and, for collection-valued fields, non-empty. Boolean false and
// numeric zero are present values.
func IsPresent(field string, v any) bool {
	if v == nil {
		return false
	}
	switch vv := v.(type) {
	case string:
		return strings.TrimSpace(vv) != ""
	case []string:
		return len(vv) > 0
	case []any:
		return len(vv) > 0
	case map[string]any:
		return len(vv) > 0
	}
	return true
}

// NormalizeField validates and canonicalizes an extracted value. The second
// return is false when the value is out of range or otherwise unusable, in
// which case the field counts as absent rather than an error.
func NormalizeField(field string, v any) (any, bool) {
	if !IsPresent(field, v) {
		return nil, false
	}
	switch field {
	case "age":
		n, ok := toInt(v)
		if !ok || n < 0 || n > 150 {
			return nil, false
		}
		return n, true
	case "spice_tolerance":
		n, ok := toInt(v)
		if !ok || n < 1 || n > 5 {
			return nil, false
		}
		return n, true
	case "price_range":
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if !priceRanges[s] {
			return nil, false
		}
		return s, true
	case "is_tourist":
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		return b, true
	case "dietary_restrictions", "cuisine_preferences", "cultural_background",
		"food_allergies", "preferred_languages":
		items := toStringSet(v)
		if len(items) == 0 {
			return nil, false
		}
		return items, true
	case "phone", "email", "first_name", "last_name", "username":
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false
		}
		return s, true
	}
	return v, true
}

// MissingFields returns the catalog fields not present in the given view,
// in question priority order.
func MissingFields(fields map[string]any) []string {
	var missing []string
	for _, f := range requiredFields {
		if !IsPresent(f, fields[f]) {
			missing = append(missing, f)
		}
	}
	return missing
}

// CompletionPercent is 100 * present catalog fields / total catalog fields.
func CompletionPercent(fields map[string]any) int {
	present := 0
	for _, f := range requiredFields {
		if IsPresent(f, fields[f]) {
			present++
		}
	}
	return 100 * present / len(requiredFields)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		// JSON numbers decode as float64; reject true fractions.
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func toStringSet(v any) []string {
	var raw []string
	switch vv := v.(type) {
	case []string:
		raw = vv
	case []any:
		for _, e := range vv {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = []string{vv}
	default:
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
