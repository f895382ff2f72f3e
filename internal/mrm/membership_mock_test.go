// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "github.com/stretchr/testify/mock"

// mockMembershipController mirrors mockRouterSocket's testify idiom.
type mockMembershipController struct {
	mock.Mock
}

func newMockMembershipController() *mockMembershipController {
	return &mockMembershipController{}
}

func (m *mockMembershipController) JoinGroup(group Ip6Address) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *mockMembershipController) LeaveGroup(group Ip6Address) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *mockMembershipController) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ MembershipController = (*mockMembershipController)(nil)
