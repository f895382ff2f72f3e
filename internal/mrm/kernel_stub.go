// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package mrm

import (
	"thornbr.dev/mrm/internal/errors"
	"thornbr.dev/mrm/internal/logging"
)

// OpenRouterSocket is unsupported outside Linux: MRT6 is a Linux kernel
// facility. Other platforms that need this manager must provide their own
// RouterSocket implementation (see the SMCRoute backend for an alternative
// that doesn't need one at all).
func OpenRouterSocket(mifs *MifTable, logger *logging.Logger) (RouterSocket, error) {
	return nil, errors.New(errors.KindUnavailable, "mrm: kernel multicast routing is only supported on linux")
}
