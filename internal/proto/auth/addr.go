package auth

import (
	"encoding/binary"
	"net/netip"
)

// ipToUint32 packs a dotted-quad (or resolvable literal) IPv4 address
// into the big-endian uint32 AgeReply.game_server_node carries, the
// wire shape a struct sockaddr_in's s_addr occupies on the client side.
// An address that doesn't parse as IPv4 (e.g. left blank in config, or
// an IPv6 literal) encodes as 0, which the client treats the same as
// "no game server assigned yet."
//
// net/netip rather than net.ParseIP: the server has no other use for
// net.IP's mutable-byte-slice representation, and netip.Addr's value
// semantics avoid a defensive copy on every call.
func ipToUint32(addr string) uint32 {
	a, err := netip.ParseAddr(addr)
	if err != nil || !a.Is4() {
		return 0
	}
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}
