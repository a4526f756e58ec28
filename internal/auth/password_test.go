package auth

import (
	"strings"
	"testing"
)

// bcrypt's minimum cost keeps these tests fast; the logic is cost-independent.
const testCost = 4

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	hash, err := ps.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("hash does not look like bcrypt output: %q", hash)
	}
	if !ps.Verify(hash, "Abcd123!") {
		t.Error("Verify() rejected the correct password")
	}
	if ps.Verify(hash, "Abcd123?") {
		t.Error("Verify() accepted a wrong password")
	}
	if ps.Verify(hash, "") {
		t.Error("Verify() accepted an empty password")
	}
}

func TestHashIsSalted(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	h1, err := ps.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("Abcd123!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salting is broken")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() accepted a 73-byte password")
	}
}

func TestVerifyGarbageHash(t *testing.T) {
	ps := NewPasswordServiceForTest(testCost)

	if ps.Verify("not-a-bcrypt-hash", "Abcd123!") {
		t.Error("Verify() accepted a malformed hash")
	}
}
