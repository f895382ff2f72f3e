// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"context"
	"os/exec"

	"thornbr.dev/mrm/internal/errors"
	"thornbr.dev/mrm/internal/logging"
)

// commandRunner abstracts process execution so SMCRoute is testable without
// a real smcroutectl binary, the same way the kernel router socket is
// abstracted behind RouterSocket for the primary backend.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SMCRoute is the alternate multicast routing backend from spec §9: rather
// than programming MRT6 directly, it drives an external smcroute daemon via
// its smcroutectl control client. It does not install block (negative
// cache) entries and does not run idle-cache expiry — smcroute has no
// equivalent of either — so it only ever installs unconditional static
// mroutes for registered listeners.
type SMCRoute struct {
	threadIf, backboneIf string
	binPath              string
	runner               commandRunner
	logger               *logging.Logger
	enabled              bool
}

// NewSMCRoute builds an SMCRoute backend driving the given kernel
// interfaces via the smcroutectl binary on $PATH.
func NewSMCRoute(threadIf, backboneIf string, logger *logging.Logger) *SMCRoute {
	if logger == nil {
		logger = logging.Default()
	}
	return &SMCRoute{
		threadIf:   threadIf,
		backboneIf: backboneIf,
		binPath:    "smcroutectl",
		runner:     execRunner{},
		logger:     logger,
	}
}

// Enable verifies the smcroute daemon is reachable. SMCRoute never owns a
// file descriptor of its own, so Enabled only gates whether Add/Remove talk
// to the daemon.
func (s *SMCRoute) Enable() error {
	if s.enabled {
		return nil
	}
	if _, err := s.runner.Run(context.Background(), s.binPath, "show"); err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "smcroutectl unreachable")
	}
	s.enabled = true
	s.logger.Info("smcroute: enabled", "thread_if", s.threadIf, "backbone_if", s.backboneIf)
	return nil
}

// Disable stops driving the daemon. It does not tear down any routes
// already installed; smcroute keeps its own state independent of this
// process, unlike the kernel-direct backend's socket-scoped MFC.
func (s *SMCRoute) Disable() {
	if !s.enabled {
		return
	}
	s.enabled = false
	s.logger.Info("smcroute: disabled")
}

// Add installs an unconditional backbone-to-Thread mroute for group.
// Per-call failures are logged and swallowed, matching the kernel-direct
// backend's error handling.
func (s *SMCRoute) Add(group Ip6Address) {
	if !s.enabled {
		return
	}
	if _, err := s.runner.Run(context.Background(), s.binPath,
		"add", s.backboneIf, "*", group.String(), s.threadIf); err != nil {
		s.logger.Warn("smcroute: add route failed", "group", group.String(), "err", err)
		return
	}
	s.logger.Info("smcroute: route added", "group", group.String())
}

// Remove tears down the mroute for group.
func (s *SMCRoute) Remove(group Ip6Address) {
	if !s.enabled {
		return
	}
	if _, err := s.runner.Run(context.Background(), s.binPath,
		"remove", s.backboneIf, "*", group.String(), s.threadIf); err != nil {
		s.logger.Warn("smcroute: remove route failed", "group", group.String(), "err", err)
		return
	}
	s.logger.Info("smcroute: route removed", "group", group.String())
}

// Prepare is a no-op: the smcroute daemon owns its own NOCACHE handling and
// event loop, so this backend never contributes a file descriptor to the
// caller's select loop.
func (s *SMCRoute) Prepare(ctx *MainloopContext) {}

// Process is a no-op for the same reason.
func (s *SMCRoute) Process(ctx *MainloopContext) {}
