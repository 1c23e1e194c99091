package domain

import "testing"

func TestParseContentStatus(t *testing.T) {
	for _, raw := range []string{"active", "draft", "archived"} {
		status, ok := ParseContentStatus(raw)
		if !ok || string(status) != raw {
			t.Fatalf("expected %q to parse, got %q %v", raw, status, ok)
		}
	}
	for _, raw := range []string{"", "published", "Active", "DRAFT "} {
		if _, ok := ParseContentStatus(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
