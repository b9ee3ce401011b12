package reservation

import "testing"

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if len(token) != TokenLength {
			t.Fatalf("expected %d characters, got %q", TokenLength, token)
		}
		if !ValidToken(token) {
			t.Fatalf("token %q is not base-36", token)
		}
		seen[token] = true
	}

	// 36^9 possible tokens; a repeat in 1000 draws means the source is broken.
	if len(seen) != 1000 {
		t.Errorf("expected 1000 distinct tokens, got %d", len(seen))
	}
}

func TestValidToken(t *testing.T) {
	tests := []struct {
		token string
		valid bool
	}{
		{"abc123xyz", true},
		{"000000000", true},
		{"zzzzzzzzz", true},
		{"", false},
		{"abc123xy", false},
		{"abc123xyz0", false},
		{"ABC123XYZ", false},
		{"abc-23xyz", false},
	}

	for _, tt := range tests {
		if got := ValidToken(tt.token); got != tt.valid {
			t.Errorf("ValidToken(%q) = %v, want %v", tt.token, got, tt.valid)
		}
	}
}
