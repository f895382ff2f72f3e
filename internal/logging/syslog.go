// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"log/syslog"

	"thornbr.dev/mrm/internal/errors"
)

// SyslogConfig configures forwarding of log records to a remote syslog
// collector. Most deployments leave this disabled and rely on stderr +
// the surrounding process supervisor's own log capture.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string // "udp" or "tcp"
	Tag      string
	Facility int // syslog.Priority facility bits, e.g. 1 = user-level
}

// DefaultSyslogConfig returns the conservative defaults: disabled, UDP to
// port 514, tagged with the daemon name.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "mrmd",
		Facility: 1,
	}
}

// NewSyslogWriter dials a remote syslog collector and returns an io.Writer
// suitable for slog.NewTextHandler. Port, Protocol and Tag are defaulted if
// left zero; Host is required.
func NewSyslogWriter(cfg SyslogConfig) (*syslog.Writer, error) {
	if cfg.Host == "" {
		return nil, errors.New(errors.KindValidation, "syslog: host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 514
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "udp"
	}
	if cfg.Tag == "" {
		cfg.Tag = "mrmd"
	}

	priority := syslog.Priority(cfg.Facility<<3) | syslog.LOG_INFO
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	w, err := syslog.Dial(cfg.Protocol, addr, priority, cfg.Tag)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "syslog: dial %s", addr)
	}
	return w, nil
}
