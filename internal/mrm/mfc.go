// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "sort"

// Mfc is the manager's in-memory mirror of the kernel's Multicast Forwarding
// Cache: an ordered map from MulticastRoute to MulticastRouteInfo. Iteration
// order is deterministic (MulticastRoute.Less) so expiry/unblock passes and
// tests see a stable order. Iterate snapshots keys before calling back, so
// callers may safely Erase the current entry (or any other) from within the
// callback.
type Mfc struct {
	entries map[MulticastRoute]MulticastRouteInfo
}

// NewMfc returns an empty Mfc.
func NewMfc() *Mfc {
	return &Mfc{entries: make(map[MulticastRoute]MulticastRouteInfo)}
}

// Insert writes or overwrites the entry for route.
func (m *Mfc) Insert(route MulticastRoute, info MulticastRouteInfo) {
	m.entries[route] = info
}

// Erase removes the entry for route, if any.
func (m *Mfc) Erase(route MulticastRoute) {
	delete(m.entries, route)
}

// Lookup returns the entry for route and whether it was present.
func (m *Mfc) Lookup(route MulticastRoute) (MulticastRouteInfo, bool) {
	info, ok := m.entries[route]
	return info, ok
}

// Len returns the number of entries currently cached.
func (m *Mfc) Len() int {
	return len(m.entries)
}

// Clear removes every entry.
func (m *Mfc) Clear() {
	m.entries = make(map[MulticastRoute]MulticastRouteInfo)
}

// sortedKeys returns all current routes in MulticastRoute.Less order.
func (m *Mfc) sortedKeys() []MulticastRoute {
	keys := make([]MulticastRoute, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Iterate calls fn for every entry in key order, in a snapshot taken before
// the first call. fn may Erase or Insert entries (including the one it was
// called for) without disturbing the remainder of the pass; entries added
// mid-pass are not visited, and entries erased mid-pass are simply skipped
// when their turn comes.
func (m *Mfc) Iterate(fn func(route MulticastRoute, info MulticastRouteInfo)) {
	for _, route := range m.sortedKeys() {
		info, ok := m.entries[route]
		if !ok {
			continue
		}
		fn(route, info)
	}
}
