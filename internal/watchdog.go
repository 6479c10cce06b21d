package internal

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/control"
	"github.com/markusressel/vent2go/internal/ui"
)

// HeartbeatSource is the control module, as seen by the watchdog.
// Statistics must not count as contact of the coordinator, otherwise
// the watchdog would hide a lost coordinator.
type HeartbeatSource interface {
	Statistics() control.Statistics
	Interrupt()
}

// Watchdog restarts the control loop if its loop counter stops advancing
// and reports the liveness of the daemon to systemd.
type Watchdog struct {
	source       HeartbeatSource
	pollInterval time.Duration
	stallTimeout time.Duration
	notify       func(state string) (bool, error)

	lastHeartbeat uint64
	lastProgress  time.Time
	ready         bool
	interrupts    int
}

func NewWatchdog(source HeartbeatSource, config configuration.WatchdogConfig) *Watchdog {
	return &Watchdog{
		source:       source,
		pollInterval: config.PollInterval,
		stallTimeout: config.StallTimeout,
		notify: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
	}
}

func (w *Watchdog) Run(ctx context.Context) error {
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		ui.Info("systemd watchdog enabled, interval: %v", interval)
		if interval/2 < w.pollInterval {
			ui.Warning("Watchdog poll interval %v is too long for the systemd watchdog interval %v", w.pollInterval, interval)
		}
	}

	w.lastProgress = time.Now()
	tick := time.NewTicker(w.pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			w.sendNotification(daemon.SdNotifyStopping)
			return nil
		case now := <-tick.C:
			w.check(now)
		}
	}
}

// check compares the current heartbeat with the previous one
func (w *Watchdog) check(now time.Time) {
	statistics := w.source.Statistics()
	heartbeat := statistics.LoopCounter
	running := statistics.Running

	if heartbeat != w.lastHeartbeat {
		w.lastHeartbeat = heartbeat
		w.lastProgress = now
		if !w.ready {
			w.sendNotification(daemon.SdNotifyReady)
			w.ready = true
		}
		w.sendNotification(daemon.SdNotifyWatchdog)
		return
	}

	if !running {
		// a stopped loop is not stalled
		w.lastProgress = now
		w.sendNotification(daemon.SdNotifyWatchdog)
		return
	}

	stalledFor := now.Sub(w.lastProgress)
	if stalledFor <= w.stallTimeout {
		return
	}
	ui.ErrorAndNotify("Control loop stalled", "Control loop made no progress for %v, interrupting it", stalledFor)
	w.source.Interrupt()
	w.interrupts++
	w.lastProgress = now
}

func (w *Watchdog) sendNotification(state string) {
	if w.notify == nil {
		return
	}
	if _, err := w.notify(state); err != nil {
		ui.Debug("Unable to notify systemd: %v", err)
	}
}
