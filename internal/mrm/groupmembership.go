// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv6"

	"thornbr.dev/mrm/internal/errors"
)

// MembershipController joins and leaves kernel-level IPv6 multicast group
// membership on the backbone interface. The MRT6 forwarding plane decides
// where packets go once they reach this host, but most NICs and some kernel
// configurations still only hand multicast frames up from the wire if the
// host has locally joined the group (IPV6_JOIN_GROUP); Manager.Add/Remove
// drive this alongside the MFC so a freshly-registered Thread listener
// actually receives backbone-side traffic rather than the NIC dropping it.
type MembershipController interface {
	JoinGroup(group Ip6Address) error
	LeaveGroup(group Ip6Address) error
	Close() error
}

// icmpMembershipController implements MembershipController over an ICMPv6
// raw socket's ipv6.PacketConn, the same socket/wrapper pair the backbone
// NDP listener uses to request control messages.
type icmpMembershipController struct {
	conn *icmp.PacketConn
	pc   *ipv6.PacketConn
	ifi  *net.Interface
}

// NewMembershipController opens an ICMPv6 raw socket and binds group
// join/leave operations to ifaceName.
func NewMembershipController(ifaceName string) (MembershipController, error) {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindNotFound, "resolve membership interface %q", ifaceName)
	}

	conn, err := icmp.ListenPacket("ip6:ipv6-icmp", "::")
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "open icmpv6 socket for group membership")
	}

	pc := conn.IPv6PacketConn()
	if pc == nil {
		conn.Close()
		return nil, errors.New(errors.KindInternal, "icmpv6 socket did not yield an ipv6 packet conn")
	}

	return &icmpMembershipController{conn: conn, pc: pc, ifi: ifi}, nil
}

func (c *icmpMembershipController) JoinGroup(group Ip6Address) error {
	b := group.Bytes()
	addr := &net.UDPAddr{IP: net.IP(b[:])}
	if err := c.pc.JoinGroup(c.ifi, addr); err != nil {
		return errors.Wrapf(err, errors.KindErrno, "join group %s on %s", group, c.ifi.Name)
	}
	return nil
}

func (c *icmpMembershipController) LeaveGroup(group Ip6Address) error {
	b := group.Bytes()
	addr := &net.UDPAddr{IP: net.IP(b[:])}
	if err := c.pc.LeaveGroup(c.ifi, addr); err != nil {
		return errors.Wrapf(err, errors.KindErrno, "leave group %s on %s", group, c.ifi.Name)
	}
	return nil
}

func (c *icmpMembershipController) Close() error {
	return c.conn.Close()
}

var _ MembershipController = (*icmpMembershipController)(nil)
