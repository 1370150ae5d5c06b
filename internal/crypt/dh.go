// Package crypt implements the per-channel Diffie-Hellman handshake and
// the RC4 stream cipher used to encrypt established connections
// (spec.md §4.A).
package crypt

import (
	"crypto/rand"
	"math/big"
)

// Params holds one channel's fixed DH parameters: a base g, a 512-bit
// prime modulus N, and the server's private exponent K. G is small and
// fixed per channel (7 for gate, 41 for auth, 73 for game per spec.md
// §4.A) and must match the client build.
type Params struct {
	G *big.Int
	N *big.Int
	K *big.Int
}

// ServerPublic returns X = g^K mod N, the value advertised to the client
// during the handshake (spec.md §4.A).
func (p *Params) ServerPublic() *big.Int {
	return new(big.Int).Exp(p.G, p.K, p.N)
}

// SharedSecret derives shared = clientY^K mod N given the client's
// public DH value.
func (p *Params) SharedSecret(clientY *big.Int) *big.Int {
	return new(big.Int).Exp(clientY, p.K, p.N)
}

// KeyBytes returns the first n bytes of v in little-endian order,
// zero-padding if v's magnitude is shorter than n bytes. This implements
// the "truncate to first 7 bytes" step of RC4 keying (spec.md §4.A).
func KeyBytes(v *big.Int, n int) []byte {
	be := v.Bytes() // big-endian, no leading zero byte
	out := make([]byte, n)
	for i := 0; i < n && i < len(be); i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// GenerateClientKeypair picks a uniform random exponent in [2, N-2] and
// returns (Y, exponent) for a client-role DH participant. It exists so
// tests can exercise both sides of the handshake without a real client.
func GenerateClientKeypair(p *Params) (y *big.Int, exponent *big.Int, err error) {
	exponent, err = randomExponent(p.N)
	if err != nil {
		return nil, nil, err
	}
	y = new(big.Int).Exp(p.G, exponent, p.N)
	return y, exponent, nil
}

func randomExponent(n *big.Int) (*big.Int, error) {
	max := new(big.Int).Sub(n, big.NewInt(3)) // upper bound for [2, n-2]
	if max.Sign() <= 0 {
		max = big.NewInt(1)
	}
	r, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, err
	}
	return r.Add(r, big.NewInt(2)), nil
}
