// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package mrm implements the Multicast Routing Manager of a Thread Border
// Router: the subsystem that programs the host kernel's IPv6 multicast
// forwarding plane (MRT6) so traffic flows correctly between the Thread mesh
// and the backbone LAN per Thread Backbone-Router rules.
//
// The manager owns a raw ICMPv6 socket multiplexed with the kernel's
// multicast-routing interface, a state machine tying Thread Multicast
// Listener Registrations to kernel Multicast Forwarding Cache entries, and a
// cache with time/traffic-based expiry. It does not implement PIM, unicast
// routing, MLD snooping, or IPv4 multicast; the kernel forwards packets, this
// package only installs the forwarding decisions.
package mrm
