package security

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatal("expected password to verify against its own hash")
	}

	if VerifyPassword("wrong password", hash) {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected salted hashes to differ for the same input")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("password", "not-a-bcrypt-hash") {
		t.Fatal("expected malformed hash to count as mismatch")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if VerifyPassword("", hash) {
		t.Fatal("expected empty password to fail verification")
	}
	if VerifyPassword("password", "") {
		t.Fatal("expected empty hash to fail verification")
	}
}
