package crypt

import (
	"math/big"
	"testing"
)

// TestHandshakeSharedSecretAgreement exercises invariant 3 from spec.md
// §8: for any (N, K) produced by the keygen helper, server- and
// client-derived shared secrets agree mod N.
func TestHandshakeSharedSecretAgreement(t *testing.T) {
	n, k, err := GenerateChannelKeys(41)
	if err != nil {
		t.Fatalf("GenerateChannelKeys: %v", err)
	}
	params := &Params{G: big.NewInt(41), N: n, K: k}

	clientY, clientExp, err := GenerateClientKeypair(params)
	if err != nil {
		t.Fatalf("GenerateClientKeypair: %v", err)
	}

	serverShared := params.SharedSecret(clientY)
	serverX := params.ServerPublic()
	clientShared := new(big.Int).Exp(serverX, clientExp, n)

	if serverShared.Cmp(clientShared) != 0 {
		t.Fatalf("shared secrets disagree: server=%s client=%s", serverShared, clientShared)
	}

	if got, want := KeyBytes(serverShared, 7), KeyBytes(clientShared, 7); string(got) != string(want) {
		t.Fatalf("truncated key bytes disagree: server=%x client=%x", got, want)
	}
}

// TestScenarioS1 implements spec.md §8 scenario S1 with a small literal
// test vector so the arithmetic itself (not randomness) is pinned down.
func TestScenarioS1(t *testing.T) {
	n := big.NewInt(0xC7) // deliberately small test-vector modulus
	k := big.NewInt(5)
	g := big.NewInt(41)

	params := &Params{G: g, N: n, K: k}

	// client exponent is 7 per the scenario text ("client Y = g^7 mod N")
	clientExp := big.NewInt(7)
	clientY := new(big.Int).Exp(g, clientExp, n)

	wantX := new(big.Int).Exp(g, k, n)
	gotX := params.ServerPublic()
	if gotX.Cmp(wantX) != 0 {
		t.Fatalf("server X = %s, want %s", gotX, wantX)
	}

	shared := params.SharedSecret(clientY)
	wantShared := new(big.Int).Exp(clientY, k, n)
	if shared.Cmp(wantShared) != 0 {
		t.Fatalf("shared = %s, want %s", shared, wantShared)
	}

	key := KeyBytes(shared, 7)
	if len(key) != 7 {
		t.Fatalf("key length = %d, want 7", len(key))
	}
}

func TestEncodeDecodeBase64BERoundTrip(t *testing.T) {
	n, k, err := GenerateChannelKeys(7)
	if err != nil {
		t.Fatalf("GenerateChannelKeys: %v", err)
	}

	encN := EncodeBase64BE(n, KeyBits/8)
	decN, err := DecodeBase64BE(encN)
	if err != nil {
		t.Fatalf("DecodeBase64BE(N): %v", err)
	}
	if decN.Cmp(n) != 0 {
		t.Fatalf("N round-trip mismatch: got %s want %s", decN, n)
	}

	encK := EncodeBase64BE(k, KeyBits/8)
	decK, err := DecodeBase64BE(encK)
	if err != nil {
		t.Fatalf("DecodeBase64BE(K): %v", err)
	}
	if decK.Cmp(k) != 0 {
		t.Fatalf("K round-trip mismatch: got %s want %s", decK, k)
	}
}
