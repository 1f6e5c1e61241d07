package common

import (
	"strings"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{17.9982, 18},
		{49.995, 50},
		{0, 0},
		{1769.999, 1770},
		{10.114, 10.11},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  welcome10 "); got != "WELCOME10" {
		t.Errorf("NormalizeCode = %q, want WELCOME10", got)
	}
}

func TestNextOrderNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := NextOrderNumber()
		if !strings.HasPrefix(n, "AGR") {
			t.Fatalf("order number %q missing AGR prefix", n)
		}
		if seen[n] {
			t.Fatalf("duplicate order number %q", n)
		}
		seen[n] = true
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := []string{"rice", "wheat"}
	s := ToJSON(in)
	var out []string
	if err := FromJSON(s, &out); err != nil {
		t.Fatalf("FromJSON error: %v", err)
	}
	if len(out) != 2 || out[0] != "rice" {
		t.Errorf("round trip = %v, want %v", out, in)
	}

	// Empty input is a no-op, not an error.
	var empty []string
	if err := FromJSON("", &empty); err != nil {
		t.Errorf("FromJSON(\"\") = %v, want nil", err)
	}
}

func TestInStrings(t *testing.T) {
	list := []string{"Seeds", "farm-tools"}
	if !InStrings(list, "seeds") {
		t.Error("InStrings must be case-insensitive")
	}
	if InStrings(list, "machinery") {
		t.Error("InStrings matched an absent value")
	}
}
