// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "time"

// FdSet is a minimal file-descriptor set, playing the role a select(2)
// fd_set plays in the external event loop this manager integrates with:
// Prepare adds the router socket to it when enabled, and the caller passes
// the same set back (after polling) so Process knows whether to read.
type FdSet struct {
	fds map[int]struct{}
}

// NewFdSet returns an empty FdSet.
func NewFdSet() *FdSet {
	return &FdSet{fds: make(map[int]struct{})}
}

// Set marks fd as present in the set.
func (s *FdSet) Set(fd int) { s.fds[fd] = struct{}{} }

// Clear removes fd from the set.
func (s *FdSet) Clear(fd int) { delete(s.fds, fd) }

// IsSet reports whether fd is present in the set.
func (s *FdSet) IsSet(fd int) bool {
	_, ok := s.fds[fd]
	return ok
}

// All returns every fd currently in the set, in no particular order. Callers
// building a real poll(2)/select(2) fd list from a set populated by Prepare
// use this; IsSet is for the reverse direction (checking one fd after a
// poll returns).
func (s *FdSet) All() []int {
	out := make([]int, 0, len(s.fds))
	for fd := range s.fds {
		out = append(out, fd)
	}
	return out
}

// MainloopContext is threaded through Prepare and Process, mirroring the
// (read_set, write_set, err_set, max_fd, timeout) tuple a select()-based
// event loop maintains across all the subsystems it multiplexes. This
// manager only ever touches ReadFDs and MaxFD; WriteFDs/ErrFDs exist so the
// same context can be shared with other fd-owning subsystems in the loop.
type MainloopContext struct {
	ReadFDs  *FdSet
	WriteFDs *FdSet
	ErrFDs   *FdSet
	MaxFD    int
	// Timeout is the loop's poll timeout. Prepare may shorten it; this
	// manager never does (expiry is amortized onto upcall processing, not
	// driven by a timer), but the field exists for parity with the
	// upstream event-loop contract other subsystems rely on.
	Timeout time.Duration
}

// NewMainloopContext returns a MainloopContext with empty fd sets.
func NewMainloopContext() *MainloopContext {
	return &MainloopContext{ReadFDs: NewFdSet(), WriteFDs: NewFdSet(), ErrFDs: NewFdSet()}
}
