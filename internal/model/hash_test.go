package model

import "testing"

// TestScenarioS2 implements spec.md §8 scenario S2: name="Tester",
// password="hunter2", server_challenge=0xDEADBEEF, client_nonce=0x01020304.
// It checks only that the construction yields a non-zero digest and is
// deterministic for these inputs; no expected digest value is recorded.
func TestScenarioS2(t *testing.T) {
	passHash := LegacyPassHash("Tester", "hunter2")
	final := ChallengeHash(passHash, 0xDEADBEEF, 0x01020304)

	if final == ([20]byte{}) {
		t.Fatal("challenge hash must not be the zero digest")
	}

	// Recomputing must be deterministic.
	again := ChallengeHash(LegacyPassHash("Tester", "hunter2"), 0xDEADBEEF, 0x01020304)
	if final != again {
		t.Fatal("hash computation is not deterministic")
	}
}

func TestLegacyPassHashCaseInsensitiveName(t *testing.T) {
	a := LegacyPassHash("Tester", "hunter2")
	b := LegacyPassHash("tester", "hunter2")
	if a != b {
		t.Fatal("account name normalization must be case-insensitive")
	}
}

func TestLegacyPassHashDomainQuirk(t *testing.T) {
	plain := LegacyPassHash("someone", "hunter2")
	domain := LegacyPassHash("someone@gametap.com", "hunter2")

	for i := 0; i < 5; i++ {
		if domain[i] != 0 {
			t.Fatalf("byte %d of domain-account hash = %x, want zeroed", i, domain[i])
		}
	}
	if plain[0] == 0 && plain[1] == 0 && plain[2] == 0 && plain[3] == 0 && plain[4] == 0 {
		t.Skip("non-domain hash coincidentally has leading zero bytes; inconclusive")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	a := LegacyPassHash("x", "y")
	b := LegacyPassHash("x", "y")
	c := LegacyPassHash("x", "z")

	if !ConstantTimeEqual(a, b) {
		t.Fatal("equal hashes reported unequal")
	}
	if ConstantTimeEqual(a, c) {
		t.Fatal("unequal hashes reported equal")
	}
}
