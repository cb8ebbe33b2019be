package audit

import (
	"reflect"
	"testing"
)

func TestSanitizeMasksSensitiveKeys(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		match bool
	}{
		{"exact password", "password", true},
		{"camel case prefix", "oldPassword", true},
		{"snake case token", "reset_token", true},
		{"refresh token", "refreshToken", true},
		{"access token", "accessToken", true},
		{"upper case", "PASSWORD_HASH", true},
		{"credit card", "credit_card_number", true},
		{"api key", "apiKey", true},
		{"plain field", "email", false},
		{"name field", "name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := map[string]any{tt.key: "secret-value"}
			out := Sanitize(in).(map[string]any)
			if tt.match && out[tt.key] != RedactedMarker {
				t.Errorf("Sanitize left %q = %v, want marker", tt.key, out[tt.key])
			}
			if !tt.match && out[tt.key] != "secret-value" {
				t.Errorf("Sanitize changed benign key %q to %v", tt.key, out[tt.key])
			}
		})
	}
}

func TestSanitizeRecursesNestedStructures(t *testing.T) {
	in := map[string]any{
		"user": map[string]any{
			"email":    "a@b.c",
			"password": "hunter2",
			"sessions": []any{
				map[string]any{"token": "abc", "ip": "1.2.3.4"},
				map[string]any{"token": "def", "ip": "5.6.7.8"},
			},
		},
		"numbers": []any{1, 2, 3},
	}

	out := Sanitize(in).(map[string]any)
	user := out["user"].(map[string]any)
	if user["password"] != RedactedMarker {
		t.Errorf("nested password not redacted: %v", user["password"])
	}
	if user["email"] != "a@b.c" {
		t.Errorf("nested email changed: %v", user["email"])
	}
	sessions := user["sessions"].([]any)
	for i, s := range sessions {
		sm := s.(map[string]any)
		if sm["token"] != RedactedMarker {
			t.Errorf("session %d token not redacted: %v", i, sm["token"])
		}
		if sm["ip"] == RedactedMarker {
			t.Errorf("session %d ip wrongly redacted", i)
		}
	}
	if !reflect.DeepEqual(out["numbers"], []any{1, 2, 3}) {
		t.Errorf("scalar array changed: %v", out["numbers"])
	}

	// The input must not be mutated.
	if in["user"].(map[string]any)["password"] != "hunter2" {
		t.Error("Sanitize mutated its input")
	}
}

func TestSanitizePassThrough(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "hello"},
		{"int", 42},
		{"bool", true},
		{"float", 3.14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.in {
				t.Errorf("Sanitize(%v) = %v", tt.in, got)
			}
		})
	}
}

func TestSanitizeNonDestructive(t *testing.T) {
	in := map[string]any{
		"id":    1,
		"name":  "org",
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"role": "owner"},
	}
	out := Sanitize(in)
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Sanitize of benign object differs: %v vs %v", out, in)
	}
}

func TestSanitizeMapNil(t *testing.T) {
	if SanitizeMap(nil) != nil {
		t.Error("SanitizeMap(nil) should stay nil")
	}
}
