package security

import (
	"strconv"
	"testing"
)

func TestGenerateResetCodeRange(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		code, err := GenerateResetCode()
		if err != nil {
			t.Fatalf("GenerateResetCode returned error: %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}

		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", n)
		}

		seen[code] = struct{}{}
	}

	if len(seen) < 2 {
		t.Fatal("expected codes to vary across draws")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	other, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if token == other {
		t.Fatal("expected distinct tokens across draws")
	}

	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}
