package util

import "testing"

func TestRandomString(t *testing.T) {
	s, err := RandomString(32)
	if err != nil {
		t.Fatalf("Failed to generate random string: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("Expected length 32, got %d", len(s))
	}
	s2, _ := RandomString(32)
	if s == s2 {
		t.Fatalf("Two random strings should not be equal")
	}
}

func TestHashClientIP(t *testing.T) {
	h := HashClientIP("203.0.113.7", "secret")
	if len(h) != 32 {
		t.Fatalf("Expected 32 hex chars, got %d", len(h))
	}
	if h == HashClientIP("203.0.113.7", "other") {
		t.Fatalf("Different salts should produce different hashes")
	}
	if h != HashClientIP("203.0.113.7", "secret") {
		t.Fatalf("Hash should be deterministic for the same salt")
	}
	if HashClientIP("", "secret") != "" {
		t.Fatalf("Empty IP should hash to empty string")
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("reader@example.com") {
		t.Errorf("valid email rejected")
	}
	if ValidateEmail("not-an-email") {
		t.Errorf("invalid email accepted")
	}
}
