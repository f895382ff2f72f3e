// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"time"

	"thornbr.dev/mrm/internal/clock"
	"thornbr.dev/mrm/internal/logging"
)

// MfcExpireTimeout is how long an MFC entry may go without fresh traffic
// before the expiry engine will consider evicting it.
const MfcExpireTimeout = 300 * time.Second

// runExpiry implements spec §4.G. It visits every MFC entry whose last
// activity is older than MfcExpireTimeout, re-queries the kernel's
// per-route counters, and either refreshes the entry (traffic seen since
// the last pass) or evicts it (no new traffic). It runs synchronously at
// the start of every upcall-driven install, per spec §5's ordering
// guarantee that expiry runs before the new entry is installed.
//
// Per spec's open question on UpdateMulticastRouteInfo: the refresh test
// compares pktcnt-wrong_if against ValidPktCnt, but a refreshed entry then
// stores the kernel's raw pktcnt in ValidPktCnt, not pktcnt-wrong_if. That
// asymmetry is preserved rather than corrected; see DESIGN.md.
func runExpiry(mfc *Mfc, sock RouterSocket, clk clock.Clock, logger *logging.Logger) (refreshed, evicted int) {
	now := clk.Now()

	mfc.Iterate(func(route MulticastRoute, info MulticastRouteInfo) {
		if info.LastUse.Add(MfcExpireTimeout).After(now) {
			return
		}

		counters, err := sock.QueryCounters(route)
		if err != nil {
			logger.Warn("expiry: counter query failed, keeping entry", "route", route.String(), "err", err)
			return
		}

		valid := counters.PktCnt - counters.WrongIf
		if valid != info.ValidPktCnt {
			info.ValidPktCnt = counters.PktCnt
			info.LastUse = now
			mfc.Insert(route, info)
			logger.Debug("expiry: entry still active, refreshed", "route", route.String(), "pktcnt", counters.PktCnt)
			refreshed++
			return
		}

		if err := sock.DeleteMfc(route, info.Iif); err != nil {
			logger.Warn("expiry: kernel delete failed, keeping entry", "route", route.String(), "err", err)
			return
		}
		mfc.Erase(route)
		logger.Info("expiry: evicted idle route", "route", route.String())
		evicted++
	})
	return refreshed, evicted
}
