package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/verixa/internal/common"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	password := []byte("secret-password")

	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == string(password) {
		t.Fatalf("hash must not equal plaintext")
	}

	if !CheckPassword(hash, password) {
		t.Errorf("expected password to verify against its own hash")
	}
	if CheckPassword(hash, []byte("wrong-password")) {
		t.Errorf("expected wrong password to be rejected")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	password := []byte("same")

	h1, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if h1 == h2 {
		t.Errorf("expected different hashes for the same password (salt)")
	}
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword([]byte("pw"), 5)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost error: %v", err)
	}
	if cost != 5 {
		t.Errorf("cost = %d, want 5", cost)
	}
}

func TestHashPassword_InvalidCostFallsBackToDefault(t *testing.T) {
	hash, err := HashPassword([]byte("pw"), 0)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	cost, _ := bcrypt.Cost([]byte(hash))
	if cost != DefaultCost {
		t.Errorf("cost = %d, want %d", cost, DefaultCost)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(bytes.Repeat([]byte("a"), 73), bcrypt.MinCost)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestCheckPassword_SentinelNeverMatches(t *testing.T) {
	candidates := [][]byte{nil, []byte(""), []byte("null"), []byte("password")}
	for _, c := range candidates {
		if CheckPassword(NoPasswordSentinel, c) {
			t.Errorf("sentinel matched candidate %q", c)
		}
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("", []byte("")) {
		t.Errorf("empty hash must not match")
	}
	if CheckPassword("not-a-bcrypt-hash", []byte("not-a-bcrypt-hash")) {
		t.Errorf("malformed hash must not match")
	}
}
