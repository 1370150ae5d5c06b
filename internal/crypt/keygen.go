package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// KeyBits is the fixed modulus size for all three channels (spec.md §4.A).
const KeyBits = 512

// GenerateChannelKeys produces a fresh (N, K) pair for a channel: N is a
// safe prime of KeyBits bits, K is uniform in [2, N-2]. This is an
// offline operator tool (spec.md §4.A "keygen helper"), never invoked on
// the server's hot path.
func GenerateChannelKeys(g int64) (n, k *big.Int, err error) {
	n, err = randomSafePrime(KeyBits)
	if err != nil {
		return nil, nil, err
	}
	k, err = randomExponent(n)
	if err != nil {
		return nil, nil, err
	}
	return n, k, nil
}

// randomSafePrime returns a prime p of the given bit length such that
// (p-1)/2 is also prime, matching the "safe prime modulus" requirement
// in spec.md §4.A.
func randomSafePrime(bits int) (*big.Int, error) {
	for {
		q, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, err
		}
		p := new(big.Int).Lsh(q, 1)
		p.Add(p, big.NewInt(1))
		if p.ProbablyPrime(20) {
			return p, nil
		}
	}
}

// EncodeBase64BE renders v as big-endian bytes (left-padded to byteLen),
// base64 encoded, matching the "emit both as base64" requirement for the
// keygen helper's output.
func EncodeBase64BE(v *big.Int, byteLen int) string {
	be := v.Bytes()
	buf := make([]byte, byteLen)
	copy(buf[byteLen-len(be):], be)
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeBase64BE parses a big-endian base64-encoded value, the inverse
// of EncodeBase64BE, used when loading [crypt_keys] from config.
func DecodeBase64BE(s string) (*big.Int, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(buf), nil
}
