package crypt

import "testing"

func TestRC4RoundTrip(t *testing.T) {
	key := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	plain := []byte("the quick brown fox jumps over the lazy dog")

	enc, err := NewRC4(key)
	if err != nil {
		t.Fatalf("NewRC4: %v", err)
	}
	cipher := make([]byte, len(plain))
	enc.XORKeyStream(cipher, plain)

	dec, err := NewRC4(key)
	if err != nil {
		t.Fatalf("NewRC4: %v", err)
	}
	roundTrip := make([]byte, len(cipher))
	dec.XORKeyStream(roundTrip, cipher)

	if string(roundTrip) != string(plain) {
		t.Fatalf("round-trip mismatch: got %q want %q", roundTrip, plain)
	}
}

// TestRC4KnownAnswer checks against a well-known RC4 test vector
// (key="Key", plaintext="Plaintext") to confirm the KSA/PRGA
// implementation matches the standard algorithm, independent of our own
// round-trip test.
func TestRC4KnownAnswer(t *testing.T) {
	c, err := NewRC4([]byte("Key"))
	if err != nil {
		t.Fatalf("NewRC4: %v", err)
	}
	out := make([]byte, len("Plaintext"))
	c.XORKeyStream(out, []byte("Plaintext"))

	want := []byte{0xBB, 0xF3, 0x16, 0xE8, 0xD9, 0x40, 0xAF, 0x0A, 0xD3}
	if string(out) != string(want) {
		t.Fatalf("got %x, want %x", out, want)
	}
}

func TestRC4InvalidKeyLength(t *testing.T) {
	if _, err := NewRC4(nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}
