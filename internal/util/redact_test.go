package util

import (
	"strings"
	"testing"
)

func TestMaskSensitiveQuery(t *testing.T) {
	masked := MaskSensitiveQuery("q=hello&api_key=supersecret")
	if strings.Contains(masked, "supersecret") {
		t.Errorf("api_key leaked: %q", masked)
	}
	if !strings.Contains(masked, "q=hello") {
		t.Errorf("non-sensitive parameter lost: %q", masked)
	}

	if got := MaskSensitiveQuery("q=hello"); got != "q=hello" {
		t.Errorf("clean query should pass through, got %q", got)
	}
	if got := MaskSensitiveQuery(""); got != "" {
		t.Errorf("empty query should stay empty, got %q", got)
	}
}

func TestRedactSensitiveJSON(t *testing.T) {
	in := []byte(`{"query":"hi","auth":{"token":"abc","user":"me"}}`)
	out := string(RedactSensitiveJSON(in))
	if strings.Contains(out, "abc") {
		t.Errorf("token leaked: %s", out)
	}
	if !strings.Contains(out, `"user":"me"`) {
		t.Errorf("non-sensitive field lost: %s", out)
	}

	notJSON := []byte("plain text")
	if got := RedactSensitiveJSON(notJSON); string(got) != "plain text" {
		t.Errorf("non-JSON body changed: %q", got)
	}
}
