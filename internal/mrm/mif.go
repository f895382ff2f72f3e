// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "fmt"

// MifIndex identifies one of the two kernel Multicast Interfaces (MIFs) this
// manager installs, or the None sentinel. None is a distinct, carried value
// rather than an absence at the type level: the policy engine branches on it
// explicitly to mean "install a block entry".
type MifIndex uint8

const (
	// MifThread is MIF 0, facing the Thread mesh.
	MifThread MifIndex = 0
	// MifBackbone is MIF 1, facing the backbone LAN.
	MifBackbone MifIndex = 1
	// MifNone is the sentinel meaning "no output interface" (negative cache
	// / block entry), mirroring <linux/mroute6.h>'s use of an out-of-range
	// mifi_t for "no parent"/"no interface" rather than a special type.
	MifNone MifIndex = 0xFF
)

func (m MifIndex) String() string {
	switch m {
	case MifThread:
		return "Thread"
	case MifBackbone:
		return "Backbone"
	case MifNone:
		return "None"
	default:
		return fmt.Sprintf("MifIndex(%d)", uint8(m))
	}
}

// IsValid reports whether m is one of the two real MIFs this manager
// configures (Thread or Backbone); MifNone and any other value are not.
func (m MifIndex) IsValid() bool {
	return m == MifThread || m == MifBackbone
}
