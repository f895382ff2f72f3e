// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "thornbr.dev/mrm/internal/errors"

// resolveOif implements the policy table from spec §4.F: given the
// interface a packet arrived on and its destination group, decide the
// output interface (or MifNone for a block/negative-cache entry).
//
//	iif      | condition                          | oif
//	Backbone | group has a Thread listener        | Thread
//	Backbone | group has no Thread listener        | None (block)
//	Thread   | scope(group) > realm-local (0x3)    | Backbone
//	Thread   | otherwise                            | None
//	anything else                                   | error
func resolveOif(iif MifIndex, group Ip6Address, listeners *ListenerSet) (MifIndex, error) {
	switch iif {
	case MifBackbone:
		if listeners.Contains(group) {
			return MifThread, nil
		}
		return MifNone, nil
	case MifThread:
		if group.Scope() > ScopeRealmLocal {
			return MifBackbone, nil
		}
		return MifNone, nil
	default:
		return MifNone, errors.Errorf(errors.KindValidation, "policy: iif must be Thread or Backbone, got %s", iif)
	}
}

// oifSet returns the kernel ifset argument for an oif decision: empty for a
// block entry, a single-element slice otherwise.
func oifSet(oif MifIndex) []MifIndex {
	if oif == MifNone {
		return nil
	}
	return []MifIndex{oif}
}
