// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package mrm

import (
	"github.com/vishvananda/netlink"

	"thornbr.dev/mrm/internal/errors"
)

// NetlinkResolver resolves interface names to indices via netlink instead
// of the stdlib's net.InterfaceByName, so a caller that already maintains a
// netlink handle for other BR subsystems doesn't pay for a second,
// differently-implemented interface lookup.
type NetlinkResolver struct{}

func (NetlinkResolver) InterfaceIndex(name string) (int, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return 0, errors.Wrapf(err, errors.KindNotFound, "netlink: resolve interface %q", name)
	}
	return link.Attrs().Index, nil
}

var _ IfIndexResolver = NetlinkResolver{}
