package onboarding

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path normalizes and filters", func(t *testing.T) {
		llm := &fakeCompleter{jsonPayloads: []string{`{
			"age": 25,
			"dietary_restrictions": ["Vegetarian"],
			"cuisine_preferences": ["Italian"],
			"price_range": null,
			"is_tourist": null,
			"reasoning": "user mentioned being 25, vegetarian, loving italian food"
		}`}}
		ex := NewExtractor(llm, zerolog.Nop())

		got := ex.Extract(ctx, "I'm 25, vegetarian, and I love Italian food")
		require.Len(t, got, 3)
		assert.Equal(t, 25, got["age"])
		assert.Equal(t, []string{"vegetarian"}, got["dietary_restrictions"])
		assert.Equal(t, []string{"italian"}, got["cuisine_preferences"])
		assert.NotContains(t, got, "reasoning")
		assert.NotContains(t, got, "price_range")
	})

	t.Run("empty utterance skips the completion call", func(t *testing.T) {
		llm := &fakeCompleter{}
		ex := NewExtractor(llm, zerolog.Nop())

		got := ex.Extract(ctx, "   ")
		assert.Empty(t, got)
		assert.Zero(t, llm.jsonCalls)
	})

	t.Run("completion failure yields no fields", func(t *testing.T) {
		llm := &fakeCompleter{jsonErr: errScripted}
		ex := NewExtractor(llm, zerolog.Nop())

		assert.Empty(t, ex.Extract(ctx, "I'm 25"))
	})

	t.Run("schema violation discards everything", func(t *testing.T) {
		llm := &fakeCompleter{jsonPayloads: []string{`{"age": 25, "favorite_color": "blue"}`}}
		ex := NewExtractor(llm, zerolog.Nop())

		assert.Empty(t, ex.Extract(ctx, "I'm 25 and I like blue"))
	})

	t.Run("unusable values dropped individually", func(t *testing.T) {
		llm := &fakeCompleter{jsonPayloads: []string{`{"age": 30, "spice_tolerance": 5, "price_range": "luxury", "first_name": "   "}`}}
		ex := NewExtractor(llm, zerolog.Nop())

		got := ex.Extract(ctx, "I'm 30, love very spicy food, money is no object")
		assert.Equal(t, 30, got["age"])
		assert.Equal(t, 5, got["spice_tolerance"])
		assert.Equal(t, "luxury", got["price_range"])
		assert.NotContains(t, got, "first_name")
	})

	t.Run("non-object output discarded", func(t *testing.T) {
		llm := &fakeCompleter{jsonPayloads: []string{`"sorry, I cannot help"`}}
		ex := NewExtractor(llm, zerolog.Nop())

		assert.Empty(t, ex.Extract(ctx, "hello"))
	})
}
