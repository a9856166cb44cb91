package matcher

import "testing"

func TestMatch(t *testing.T) {
	var testCases = []struct {
		pattern   string
		candidate string
		matched   bool
	}{
		{"*", "anything", true},
		{"", "anything", false},

		// Exact matches
		{"127.0.0.1", "127.0.0.1", true},
		{"127.0.0.1", "127.0.0.2", false},

		// Glob matches
		{"127.0.0.*", "127.0.0.2", true},
		{"192.168.?.1", "192.168.5.1", true},
		{"192.168.?.1", "192.168.50.1", false},
		{"10.*", "10.1.2.3", true},
		{"admin*", "administrator", true},

		// Malformed patterns never match
		{"[", "[", false},
	}

	for i, tc := range testCases {
		if got := Match(tc.pattern, tc.candidate); got != tc.matched {
			t.Fatalf("[%d] Match(%q, %q) = %v; expected %v", i, tc.pattern, tc.candidate, got, tc.matched)
		}
	}
}

func TestMatchAny(t *testing.T) {
	if MatchAny(nil, "1.2.3.4") {
		t.Fatalf("empty pattern list must not match")
	}
	if !MatchAny([]string{"10.*", "1.2.3.*"}, "1.2.3.4") {
		t.Fatalf("expected match")
	}
}
