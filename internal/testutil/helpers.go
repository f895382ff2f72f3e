// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package testutil

import (
	"os"
	"testing"
)

// RequireVM skips the test if the MRM_VM_TEST environment variable is not
// set. This ensures that tests requiring real kernel capabilities (MRT6
// sockets, real interfaces, CAP_NET_ADMIN) are only run in an environment
// set up for it, not on every contributor's laptop or default CI runner.
func RequireVM(t *testing.T) {
	t.Helper()
	if os.Getenv("MRM_VM_TEST") == "" {
		t.Skip("Skipping test: requires MRM_VM_TEST environment")
	}
}
