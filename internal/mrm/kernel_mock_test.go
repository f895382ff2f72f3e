// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "github.com/stretchr/testify/mock"

// mockRouterSocket is a testify mock of RouterSocket, the same idiom the
// network manager's tests use for MockNetlinker: one mock.Mock embed,
// expectations set per-test with On(...).Return(...).
type mockRouterSocket struct {
	mock.Mock
}

func newMockRouterSocket() *mockRouterSocket {
	return &mockRouterSocket{}
}

func (m *mockRouterSocket) Fd() int {
	args := m.Called()
	return args.Int(0)
}

func (m *mockRouterSocket) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockRouterSocket) InstallMfc(route MulticastRoute, iif MifIndex, oifs []MifIndex) error {
	args := m.Called(route, iif, oifs)
	return args.Error(0)
}

func (m *mockRouterSocket) DeleteMfc(route MulticastRoute, iif MifIndex) error {
	args := m.Called(route, iif)
	return args.Error(0)
}

func (m *mockRouterSocket) QueryCounters(route MulticastRoute) (Counters, error) {
	args := m.Called(route)
	c, _ := args.Get(0).(Counters)
	return c, args.Error(1)
}

func (m *mockRouterSocket) RecvUpcall() (Upcall, bool, error) {
	args := m.Called()
	up, _ := args.Get(0).(Upcall)
	return up, args.Bool(1), args.Error(2)
}

var _ RouterSocket = (*mockRouterSocket)(nil)
