package model

import "time"

// OnboardingStatus tracks where a user's onboarding conversation stands.
type OnboardingStatus string

const (
	StatusPendingInfo OnboardingStatus = "pending_info"
	StatusReady       OnboardingStatus = "ready"
	StatusOnboarded   OnboardingStatus = "onboarded"
	StatusFailed      OnboardingStatus = "failed"
)

// Terminal reports whether no further turns should be routed to a conversation.
func (s OnboardingStatus) Terminal() bool {
	return s == StatusOnboarded || s == StatusFailed
}

// User is the durable user record. It is the single source of truth for
// onboarding completion: IsOnboarded flips from false to true exactly once,
// when every catalog field is present on this record.
type User struct {
	UserID    string  `json:"userId"`
	Email     string  `json:"email"`
	Username  *string `json:"username,omitempty"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`

	Phone               *string  `json:"phone,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	CuisinePreferences  []string `json:"cuisinePreferences,omitempty"`
	PriceRange          *string  `json:"priceRange,omitempty"`
	IsTourist           *bool    `json:"isTourist,omitempty"`
	CulturalBackground  []string `json:"culturalBackground,omitempty"`
	FoodAllergies       []string `json:"foodAllergies,omitempty"`
	SpiceTolerance      *int     `json:"spiceTolerance,omitempty"`
	PreferredLanguages  []string `json:"preferredLanguages,omitempty"`

	IsOnboarded  bool       `json:"isOnboarded"`
	CreationTime time.Time  `json:"creationTime"`
	LastActive   *time.Time `json:"lastActive,omitempty"`
}

// ProfileFields flattens the record's onboarding attributes into the generic
// field map used by the catalog and the reconciler. Absent values are omitted
// rather than emitted as nil.
func (u *User) ProfileFields() map[string]any {
	f := make(map[string]any, 10)
	if u.Age != nil {
		f["age"] = *u.Age
	}
	if len(u.DietaryRestrictions) > 0 {
		f["dietary_restrictions"] = u.DietaryRestrictions
	}
	if len(u.CuisinePreferences) > 0 {
		f["cuisine_preferences"] = u.CuisinePreferences
	}
	if u.PriceRange != nil {
		f["price_range"] = *u.PriceRange
	}
	if u.IsTourist != nil {
		f["is_tourist"] = *u.IsTourist
	}
	if len(u.CulturalBackground) > 0 {
		f["cultural_background"] = u.CulturalBackground
	}
	if len(u.FoodAllergies) > 0 {
		f["food_allergies"] = u.FoodAllergies
	}
	if u.SpiceTolerance != nil {
		f["spice_tolerance"] = *u.SpiceTolerance
	}
	if len(u.PreferredLanguages) > 0 {
		f["preferred_languages"] = u.PreferredLanguages
	}
	if u.Phone != nil && *u.Phone != "" {
		f["phone"] = *u.Phone
	}
	return f
}

// ConversationState is the ephemeral per-dialogue state handed between the
// engine and the session store. It is a staging area only; completion
// decisions are always made against the durable record.
type ConversationState struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`

	Transcript     string           `json:"transcript,omitempty"`
	Extracted      map[string]any   `json:"extracted,omitempty"`
	Status         OnboardingStatus `json:"status"`
	SystemResponse string           `json:"systemResponse,omitempty"`
	Error          string           `json:"error,omitempty"`
	AwaitingAction string           `json:"awaitingAction,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversationState seeds a fresh dialogue for a user. Seed fields come
// from the durable record so a conversation never re-asks what is already
// known.
func NewConversationState(sessionID string, u *User) *ConversationState {
	st := &ConversationState{
		SessionID: sessionID,
		Status:    StatusPendingInfo,
		Extracted: map[string]any{},
		UpdatedAt: time.Now().UTC(),
	}
	if u != nil {
		st.UserID = u.UserID
		st.Email = u.Email
		for k, v := range u.ProfileFields() {
			st.Extracted[k] = v
		}
		if u.FirstName != "" {
			st.Extracted["first_name"] = u.FirstName
		}
	}
	return st
}

// TurnInput is one user utterance: either raw audio bytes or plain text.
type TurnInput struct {
	Text  string
	Audio []byte
}

// Empty reports whether the turn carries no usable input.
func (in TurnInput) Empty() bool { return in.Text == "" && len(in.Audio) == 0 }

// TurnResult is what a single engine turn hands back to the transport.
type TurnResult struct {
	Response          string           `json:"response"`
	Status            OnboardingStatus `json:"status"`
	CompletionPercent int              `json:"completionPercent"`
	Done              bool             `json:"done"`
	Error             string           `json:"error,omitempty"`
}
