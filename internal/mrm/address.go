// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"bytes"
	"net/netip"

	"thornbr.dev/mrm/internal/errors"
)

// Scope values for a multicast IPv6 address, RFC 4291 §2.7. These are the
// low nibble of the address's second byte.
const (
	ScopeReserved   = 0x0
	ScopeNodeLocal  = 0x1
	ScopeLinkLocal  = 0x2
	ScopeRealmLocal = 0x3
	ScopeAdminLocal = 0x4
	ScopeSiteLocal  = 0x5
	ScopeOrgLocal   = 0x8
	ScopeGlobal     = 0xE
)

// Ip6Address is a 16-byte IPv6 address value. It is comparable and usable as
// a map key.
type Ip6Address struct {
	addr netip.Addr
}

// Ip6AddressFromBytes builds an Ip6Address from a 16-byte slice.
func Ip6AddressFromBytes(b []byte) (Ip6Address, error) {
	if len(b) != 16 {
		return Ip6Address{}, errors.Errorf(errors.KindValidation, "ip6 address must be 16 bytes, got %d", len(b))
	}
	var a [16]byte
	copy(a[:], b)
	return Ip6Address{addr: netip.AddrFrom16(a)}, nil
}

// ParseIp6Address parses the canonical textual form of an IPv6 address.
func ParseIp6Address(s string) (Ip6Address, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Ip6Address{}, errors.Wrapf(err, errors.KindValidation, "parse ipv6 address %q", s)
	}
	if addr.Is4() {
		return Ip6Address{}, errors.Errorf(errors.KindValidation, "not an ipv6 address: %q", s)
	}
	// Normalize to the plain 16-byte form so String() always renders the
	// IPv6 textual form, even for 4-in-6 mapped input.
	return Ip6Address{addr: netip.AddrFrom16(addr.As16())}, nil
}

// Bytes returns the address's 16 raw bytes.
func (a Ip6Address) Bytes() [16]byte {
	return a.addr.As16()
}

// String returns the canonical textual form, e.g. "ff05::abcd".
func (a Ip6Address) String() string {
	return a.addr.String()
}

// IsMulticast reports whether the address's leading byte is 0xFF, per
// RFC 4291 §2.7.
func (a Ip6Address) IsMulticast() bool {
	b := a.addr.As16()
	return b[0] == 0xFF
}

// Scope returns the multicast scope nibble (byte 1, low 4 bits). It is only
// meaningful when IsMulticast is true; callers that need a defined value for
// unicast addresses should check IsMulticast first.
func (a Ip6Address) Scope() byte {
	b := a.addr.As16()
	return b[1] & 0x0F
}

// Equal reports whether two addresses are identical.
func (a Ip6Address) Equal(other Ip6Address) bool {
	return a.addr == other.addr
}

// Compare returns -1, 0 or 1 comparing a and other bytewise (lexicographic
// order over the 16 address bytes). This is the total order the MFC's
// iteration determinism depends on.
func (a Ip6Address) Compare(other Ip6Address) int {
	ab, ob := a.addr.As16(), other.addr.As16()
	return bytes.Compare(ab[:], ob[:])
}

// Less reports whether a sorts before other under Compare.
func (a Ip6Address) Less(other Ip6Address) bool {
	return a.Compare(other) < 0
}

// IsValid reports whether the address was constructed from a real value
// (the zero Ip6Address is invalid, matching netip.Addr's zero-value rules).
func (a Ip6Address) IsValid() bool {
	return a.addr.IsValid()
}
