package validate

import (
	"fmt"
	"regexp"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// nameRx keeps names to letters, spaces, hyphens and apostrophes.
var nameRx = regexp.MustCompile(`^[A-Za-z][A-Za-z' -]*$`)

// sessionIdRx matches UUID-shaped session identifiers.
var sessionIdRx = regexp.MustCompile(`^[0-9a-fA-F-]{8,64}$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func Name(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(v) > 80 || !nameRx.MatchString(v) {
		return fmt.Errorf("invalid %s", field)
	}
	return nil
}

func SessionID(v string) error {
	if v == "" {
		return fmt.Errorf("sessionId is required")
	}
	if !sessionIdRx.MatchString(v) {
		return fmt.Errorf("invalid sessionId")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
