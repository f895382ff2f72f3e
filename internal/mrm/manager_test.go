// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"thornbr.dev/mrm/internal/clock"
	"thornbr.dev/mrm/internal/logging"
)

// newTestManager builds a Manager whose open/openMembership funcs hand back
// sock and a permissive membership mock instead of touching a real kernel.
func newTestManager(sock *mockRouterSocket, clk clock.Clock) *Manager {
	m := NewManager("wpan0", "eth0", nil, clk, logging.Default())
	m.open = func(*MifTable, *logging.Logger) (RouterSocket, error) {
		return sock, nil
	}
	membership := newMockMembershipController()
	membership.On("JoinGroup", mock.Anything).Return(nil).Maybe()
	membership.On("LeaveGroup", mock.Anything).Return(nil).Maybe()
	membership.On("Close").Return(nil).Maybe()
	m.openMembership = func(string) (MembershipController, error) {
		return membership, nil
	}
	return m
}

func TestEnableDisableIdempotent(t *testing.T) {
	sock := newMockRouterSocket()
	sock.On("Close").Return(nil).Once()
	m := newTestManager(sock, clock.NewFake(time.Unix(0, 0)))

	require.NoError(t, m.Enable())
	require.NoError(t, m.Enable()) // second call is a no-op, open() not called again
	assert.True(t, m.Enabled())

	m.Disable()
	assert.False(t, m.Enabled())
	m.Disable() // second call is a no-op, Close() not called again
	sock.AssertExpectations(t)
}

func TestEnableFailurePropagates(t *testing.T) {
	m := NewManager("wpan0", "eth0", nil, clock.NewFake(time.Unix(0, 0)), logging.Default())
	wantErr := assert.AnError
	m.open = func(*MifTable, *logging.Logger) (RouterSocket, error) {
		return nil, wantErr
	}
	err := m.Enable()
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, m.Enabled())
}

func TestDisableClearsMfc(t *testing.T) {
	sock := newMockRouterSocket()
	sock.On("Close").Return(nil).Once()
	m := newTestManager(sock, clock.NewFake(time.Unix(0, 0)))
	require.NoError(t, m.Enable())

	route := MulticastRoute{Src: mustAddr(t, "fd00::1"), Group: mustAddr(t, "ff0e::1")}
	m.mfc.Insert(route, MulticastRouteInfo{Iif: MifThread, Oif: MifBackbone})

	m.Disable()
	assert.Equal(t, 0, m.mfc.Len())
}

// TestUpcallThreadToBackboneGlobalScope covers spec S1: a Thread-origin
// upcall for a global-scope group is forwarded to the backbone.
func TestUpcallThreadToBackboneGlobalScope(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	src := mustAddr(t, "fd00::1")
	group := mustAddr(t, "ff0e::1")
	route := MulticastRoute{Src: src, Group: group}

	sock.On("Fd").Return(42)
	sock.On("RecvUpcall").Return(Upcall{Src: src, Dst: group, Iif: MifThread}, true, nil).Once()
	sock.On("InstallMfc", route, MifThread, []MifIndex{MifBackbone}).Return(nil).Once()

	ctx := NewMainloopContext()
	m.Prepare(ctx)
	require.True(t, ctx.ReadFDs.IsSet(42))
	m.Process(ctx)

	info, ok := m.mfc.Lookup(route)
	require.True(t, ok)
	assert.Equal(t, MifBackbone, info.Oif)
	assert.Equal(t, clk.Now(), info.LastUse)
	sock.AssertExpectations(t)
}

// TestUpcallThreadToBackboneRealmLocalBlocked covers spec S2: a Thread-origin
// upcall for a realm-local-or-narrower group is installed as a block entry.
func TestUpcallThreadToBackboneRealmLocalBlocked(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	src := mustAddr(t, "fd00::1")
	group := mustAddr(t, "ff03::fc")
	route := MulticastRoute{Src: src, Group: group}

	sock.On("Fd").Return(42)
	sock.On("RecvUpcall").Return(Upcall{Src: src, Dst: group, Iif: MifThread}, true, nil).Once()
	sock.On("InstallMfc", route, MifThread, []MifIndex(nil)).Return(nil).Once()

	ctx := NewMainloopContext()
	m.Prepare(ctx)
	m.Process(ctx)

	info, ok := m.mfc.Lookup(route)
	require.True(t, ok)
	assert.True(t, info.IsBlock())
	sock.AssertExpectations(t)
}

// TestUpcallBackboneToThreadWithListener covers spec S3: a Backbone-origin
// upcall for a group with a registered Thread listener is forwarded.
func TestUpcallBackboneToThreadWithListener(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	group := mustAddr(t, "ff05::abcd")
	m.Add(group)

	src := mustAddr(t, "2001:db8::1")
	route := MulticastRoute{Src: src, Group: group}

	sock.On("Fd").Return(7)
	sock.On("RecvUpcall").Return(Upcall{Src: src, Dst: group, Iif: MifBackbone}, true, nil).Once()
	sock.On("InstallMfc", route, MifBackbone, []MifIndex{MifThread}).Return(nil).Once()

	ctx := NewMainloopContext()
	m.Prepare(ctx)
	m.Process(ctx)

	info, ok := m.mfc.Lookup(route)
	require.True(t, ok)
	assert.Equal(t, MifThread, info.Oif)
	sock.AssertExpectations(t)
}

// TestAddUnblocksExistingBlockEntry covers spec S4: a Backbone-origin block
// entry is rewritten to forward once a matching listener registers.
func TestAddUnblocksExistingBlockEntry(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	group := mustAddr(t, "ff05::abcd")
	src := mustAddr(t, "2001:db8::1")
	route := MulticastRoute{Src: src, Group: group}
	m.mfc.Insert(route, MulticastRouteInfo{Iif: MifBackbone, Oif: MifNone, LastUse: clk.Now()})

	sock.On("InstallMfc", route, MifBackbone, []MifIndex{MifThread}).Return(nil).Once()

	m.Add(group)

	info, ok := m.mfc.Lookup(route)
	require.True(t, ok)
	assert.Equal(t, MifThread, info.Oif)
	sock.AssertExpectations(t)
}

// TestAddIgnoresUnrelatedGroups ensures Add only touches entries for the
// newly-registered group.
func TestAddIgnoresUnrelatedGroups(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	blockedGroup := mustAddr(t, "ff05::dead")
	route := MulticastRoute{Src: mustAddr(t, "2001:db8::1"), Group: blockedGroup}
	m.mfc.Insert(route, MulticastRouteInfo{Iif: MifBackbone, Oif: MifNone, LastUse: clk.Now()})

	m.Add(mustAddr(t, "ff05::abcd")) // unrelated group

	info, ok := m.mfc.Lookup(route)
	require.True(t, ok)
	assert.True(t, info.IsBlock(), "unrelated block entry must be left alone")
	sock.AssertNotCalled(t, "InstallMfc")
}

// TestRemoveDeletesMatchingBackboneRoutesOnly covers spec S5: removing a
// listener deletes only the Backbone-origin routes for that group, leaving
// other routes (including other groups, and Thread-origin routes for the
// same group) in place.
func TestRemoveDeletesMatchingBackboneRoutesOnly(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(1000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	group := mustAddr(t, "ff05::abcd")
	m.Add(group)

	matching := MulticastRoute{Src: mustAddr(t, "2001:db8::1"), Group: group}
	m.mfc.Insert(matching, MulticastRouteInfo{Iif: MifBackbone, Oif: MifThread, LastUse: clk.Now()})

	otherGroup := MulticastRoute{Src: mustAddr(t, "2001:db8::2"), Group: mustAddr(t, "ff05::beef")}
	m.mfc.Insert(otherGroup, MulticastRouteInfo{Iif: MifBackbone, Oif: MifThread, LastUse: clk.Now()})

	threadOrigin := MulticastRoute{Src: mustAddr(t, "fd00::9"), Group: group}
	m.mfc.Insert(threadOrigin, MulticastRouteInfo{Iif: MifThread, Oif: MifBackbone, LastUse: clk.Now()})

	sock.On("DeleteMfc", matching, MifBackbone).Return(nil).Once()

	m.Remove(group)

	_, ok := m.mfc.Lookup(matching)
	assert.False(t, ok, "matching backbone route must be deleted")
	_, ok = m.mfc.Lookup(otherGroup)
	assert.True(t, ok, "unrelated group must survive")
	_, ok = m.mfc.Lookup(threadOrigin)
	assert.True(t, ok, "thread-origin route for the same group must survive")
	sock.AssertExpectations(t)
}

func TestAddRemoveNoOpWhenDisabled(t *testing.T) {
	m := NewManager("wpan0", "eth0", nil, clock.NewFake(time.Unix(0, 0)), logging.Default())
	group := mustAddr(t, "ff05::abcd")
	m.Add(group)
	assert.True(t, m.listeners.Contains(group))
	m.Remove(group)
	assert.False(t, m.listeners.Contains(group))
}

func TestProcessNoopWhenNotReadable(t *testing.T) {
	sock := newMockRouterSocket()
	m := newTestManager(sock, clock.NewFake(time.Unix(0, 0)))
	require.NoError(t, m.Enable())
	sock.On("Fd").Return(9)

	ctx := NewMainloopContext() // socket fd never marked readable
	m.Process(ctx)
	sock.AssertNotCalled(t, "RecvUpcall")
}

func TestProcessNoopWhenDisabled(t *testing.T) {
	m := NewManager("wpan0", "eth0", nil, clock.NewFake(time.Unix(0, 0)), logging.Default())
	ctx := NewMainloopContext()
	m.Prepare(ctx) // must not panic touching a nil socket
	m.Process(ctx)
	assert.Equal(t, 0, ctx.MaxFD)
}

// TestProcessIgnoresNonNocacheMessage covers the RecvUpcall ok=false path:
// nothing is installed and no error is logged as fatal.
func TestProcessIgnoresNonNocacheMessage(t *testing.T) {
	sock := newMockRouterSocket()
	m := newTestManager(sock, clock.NewFake(time.Unix(0, 0)))
	require.NoError(t, m.Enable())

	sock.On("Fd").Return(9)
	sock.On("RecvUpcall").Return(Upcall{}, false, nil).Once()

	ctx := NewMainloopContext()
	m.Prepare(ctx)
	m.Process(ctx)

	assert.Equal(t, 0, m.mfc.Len())
	sock.AssertExpectations(t)
}

// TestHandleUpcallRunsExpiryFirst covers spec S6 at the manager level:
// installing a new route first runs the expiry pass over existing entries.
func TestHandleUpcallRunsExpiryFirst(t *testing.T) {
	sock := newMockRouterSocket()
	clk := clock.NewFake(time.Unix(10000, 0))
	m := newTestManager(sock, clk)
	require.NoError(t, m.Enable())

	staleRoute := MulticastRoute{Src: mustAddr(t, "fd00::1"), Group: mustAddr(t, "ff0e::1")}
	m.mfc.Insert(staleRoute, MulticastRouteInfo{
		Iif:         MifThread,
		Oif:         MifBackbone,
		LastUse:     clk.Now().Add(-301 * time.Second),
		ValidPktCnt: 100,
	})
	sock.On("QueryCounters", staleRoute).Return(Counters{PktCnt: 100, WrongIf: 0}, nil).Once()
	sock.On("DeleteMfc", staleRoute, MifThread).Return(nil).Once()

	newSrc := mustAddr(t, "fd00::2")
	newGroup := mustAddr(t, "ff0e::2")
	newRoute := MulticastRoute{Src: newSrc, Group: newGroup}
	sock.On("Fd").Return(3)
	sock.On("RecvUpcall").Return(Upcall{Src: newSrc, Dst: newGroup, Iif: MifThread}, true, nil).Once()
	sock.On("InstallMfc", newRoute, MifThread, []MifIndex{MifBackbone}).Return(nil).Once()

	ctx := NewMainloopContext()
	m.Prepare(ctx)
	m.Process(ctx)

	_, ok := m.mfc.Lookup(staleRoute)
	assert.False(t, ok, "idle route must have been expired before the new install")
	_, ok = m.mfc.Lookup(newRoute)
	assert.True(t, ok)
	sock.AssertExpectations(t)
}
