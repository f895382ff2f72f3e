// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

// Command mrmd is a minimal standalone host for the Multicast Routing
// Manager: it wires a Manager (or, per the config file's backend field, the
// SMCRoute shim) to a real poll(2) loop and an optional Prometheus endpoint,
// driven entirely by a static config file. It exists to exercise internal/mrm
// end to end, not as Thread Border Router's production entrypoint — a real
// deployment drives Manager from the BR's own mainloop and MLR table instead
// of a config file.
package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sys/unix"

	"thornbr.dev/mrm/internal/logging"
	"thornbr.dev/mrm/internal/mrm"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional; defaults apply)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("mrmd: %v", err)
	}

	logger := logging.Default()

	var routing mrm.MulticastRouting
	var metrics *mrm.Metrics
	switch cfg.Backend {
	case "", "kernel":
		m := mrm.NewManager(cfg.ThreadInterface, cfg.BackboneInterface, mrm.NetlinkResolver{}, nil, logger)
		metrics = mrm.NewMetrics()
		m.SetMetrics(metrics)
		routing = m
	case "smcroute":
		routing = mrm.NewSMCRoute(cfg.ThreadInterface, cfg.BackboneInterface, logger)
	default:
		log.Fatalf("mrmd: unknown backend %q", cfg.Backend)
	}

	if metrics != nil {
		metrics.Register()
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	if err := routing.Enable(); err != nil {
		log.Fatalf("mrmd: enable: %v", err)
	}
	defer routing.Disable()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info("mrmd: running", "thread_if", cfg.ThreadInterface, "backbone_if", cfg.BackboneInterface, "backend", cfg.Backend)
	if err := runLoop(routing, sigCh); err != nil {
		log.Fatalf("mrmd: loop: %v", err)
	}
}

func serveMetrics(addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("mrmd: serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("mrmd: metrics server exited", "err", err)
	}
}

// runLoop drives routing with a real poll(2)-based event loop until sigCh
// fires, translating mrm.MainloopContext's abstract fd sets to and from
// golang.org/x/sys/unix.Poll.
func runLoop(routing mrm.MulticastRouting, sigCh <-chan os.Signal) error {
	for {
		select {
		case <-sigCh:
			return nil
		default:
		}

		ctx := mrm.NewMainloopContext()
		ctx.Timeout = time.Second
		routing.Prepare(ctx)

		fds := ctx.ReadFDs.All()
		pollfds := make([]unix.PollFd, len(fds))
		for i, fd := range fds {
			pollfds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
		}

		n, err := unix.Poll(pollfds, int(ctx.Timeout.Milliseconds()))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		for _, pfd := range pollfds {
			if n == 0 || pfd.Revents&unix.POLLIN == 0 {
				ctx.ReadFDs.Clear(int(pfd.Fd))
			}
		}
		routing.Process(ctx)
	}
}
