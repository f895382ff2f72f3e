// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

// MulticastRouting is the capability set spec §9 asks both multicast
// routing backends to share: the kernel-direct Manager (this package's
// primary implementation, preferred because it supports block/unblock
// entries and idle-cache expiry) and SMCRoute (a thinner shim over an
// external smcroutectl daemon that does neither).
type MulticastRouting interface {
	Enable() error
	Disable()
	Add(group Ip6Address)
	Remove(group Ip6Address)
	Prepare(ctx *MainloopContext)
	Process(ctx *MainloopContext)
}

var (
	_ MulticastRouting = (*Manager)(nil)
	_ MulticastRouting = (*SMCRoute)(nil)
)
