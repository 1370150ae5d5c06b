package crypt

import "fmt"

// RC4 is a classical KSA+PRGA stream cipher instance, keyed once and
// applied to an arbitrary number of bytes across calls to XORKeyStream
// (spec.md §4.A). One instance is kept per direction per connection;
// read and write use independently-advancing instances even though both
// are keyed with the same derived key (spec.md §4.C).
type RC4 struct {
	s    [256]byte
	i, j byte
}

// NewRC4 performs the key-scheduling algorithm (KSA) over key and
// returns a cipher ready for XORKeyStream.
func NewRC4(key []byte) (*RC4, error) {
	if len(key) == 0 || len(key) > 256 {
		return nil, fmt.Errorf("rc4: invalid key length %d", len(key))
	}
	c := &RC4{}
	for i := 0; i < 256; i++ {
		c.s[i] = byte(i)
	}
	var j byte
	for i := 0; i < 256; i++ {
		j += c.s[i] + key[i%len(key)]
		c.s[i], c.s[j] = c.s[j], c.s[i]
	}
	return c, nil
}

// XORKeyStream XORs src with the next len(src) bytes of the keystream
// (PRGA), writing the result to dst. dst and src may overlap exactly.
func (c *RC4) XORKeyStream(dst, src []byte) {
	for k, b := range src {
		c.i++
		c.j += c.s[c.i]
		c.s[c.i], c.s[c.j] = c.s[c.j], c.s[c.i]
		dst[k] = b ^ c.s[c.s[c.i]+c.s[c.j]]
	}
}
