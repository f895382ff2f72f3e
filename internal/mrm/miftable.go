// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"net"

	"thornbr.dev/mrm/internal/errors"
)

// IfIndexResolver resolves a kernel interface name to its index. The default
// implementation uses net.InterfaceByName; production callers that already
// maintain a netlink handle (e.g. the daemon's network manager) can inject
// their own resolver instead of paying for a second name lookup.
type IfIndexResolver interface {
	InterfaceIndex(name string) (int, error)
}

// stdIfIndexResolver resolves via the standard library.
type stdIfIndexResolver struct{}

func (stdIfIndexResolver) InterfaceIndex(name string) (int, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return 0, errors.Wrapf(err, errors.KindNotFound, "resolve interface %q", name)
	}
	return ifi.Index, nil
}

// DefaultIfIndexResolver is the standard-library-backed resolver used when
// the manager is not constructed with one.
var DefaultIfIndexResolver IfIndexResolver = stdIfIndexResolver{}

// MifTable names the two fixed logical interfaces this manager configures.
// Index 0 is always Thread, index 1 is always Backbone; only the kernel
// interface each maps to is configurable.
type MifTable struct {
	ThreadIfName   string
	BackboneIfName string

	resolver IfIndexResolver
}

// NewMifTable builds a MifTable for the named Thread-facing and
// backbone-facing interfaces, resolved via resolver. A nil resolver uses
// DefaultIfIndexResolver.
func NewMifTable(threadIf, backboneIf string, resolver IfIndexResolver) *MifTable {
	if resolver == nil {
		resolver = DefaultIfIndexResolver
	}
	return &MifTable{ThreadIfName: threadIf, BackboneIfName: backboneIf, resolver: resolver}
}

// Resolve returns the kernel interface index backing the given MIF.
func (t *MifTable) Resolve(mif MifIndex) (int, error) {
	switch mif {
	case MifThread:
		return t.resolver.InterfaceIndex(t.ThreadIfName)
	case MifBackbone:
		return t.resolver.InterfaceIndex(t.BackboneIfName)
	default:
		return 0, errors.Errorf(errors.KindValidation, "not a configurable mif: %s", mif)
	}
}
