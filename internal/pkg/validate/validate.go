package validate

import (
	"regexp"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,80}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const MinPasswordLength = 6

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Username allows 3 to 80 characters of letters, digits and underscore.
func Username(value string) bool {
	return usernamePattern.MatchString(value)
}

func Email(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

func Password(value string) bool {
	return len(value) >= MinPasswordLength
}
