package model

import (
	"crypto/sha1"
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// LegacyPassHash implements the DirtSand-compatible password hash
// (spec.md §6.3): SHA-1 of the UTF-16LE account name (lowercased)
// concatenated with the UTF-16LE password, with the first five bytes of
// the digest zeroed when (and only when) the account name carries an
// "@domain" suffix (the historical GameTap-era domain-stripped account
// quirk). This must stay bit-exact; do not "clean up" the zeroing.
func LegacyPassHash(accountName, password string) [20]byte {
	name := strings.ToLower(accountName)

	buf := utf16leBytes(name)
	buf = append(buf, utf16leBytes(password)...)
	digest := sha1.Sum(buf)

	if hasDomainSuffix(name) {
		for i := 0; i < 5; i++ {
			digest[i] = 0
		}
	}
	return digest
}

// hasDomainSuffix reports whether name is an "@domain"-style legacy
// account name (spec.md §6.3's "domain-stripped" case).
func hasDomainSuffix(name string) bool {
	return strings.Contains(name, "@")
}

// ChallengeHash mixes a login password hash with the server and client
// nonces (spec.md §6.3 "the full login exchange then SHA-1s
// (seed || server_challenge || client_nonce)").
func ChallengeHash(passHash [20]byte, serverChallenge, clientNonce uint32) [20]byte {
	buf := make([]byte, 0, 20+4+4)
	buf = append(buf, passHash[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, serverChallenge)
	buf = binary.LittleEndian.AppendUint32(buf, clientNonce)
	return sha1.Sum(buf)
}

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

// ConstantTimeEqual compares two hash values without leaking timing
// information about where they first differ (spec.md §6.3 "constant-time
// comparison is mandatory").
func ConstantTimeEqual(a, b [20]byte) bool {
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
