package validate

import "testing"

func TestUsername(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"abc", true},
		{"user_42", true},
		{"ab", false},
		{"has space", false},
		{"dash-ed", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Username(tt.value); got != tt.want {
			t.Errorf("Username(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if !Email("user@example.com") {
		t.Errorf("valid email rejected")
	}
	for _, value := range []string{"", "plain", "a@b", "a b@c.com"} {
		if Email(value) {
			t.Errorf("Email(%q) = true, want false", value)
		}
	}
}

func TestPassword(t *testing.T) {
	if Password("short") {
		t.Errorf("five characters must be rejected")
	}
	if !Password("longer") {
		t.Errorf("six characters must pass")
	}
}
