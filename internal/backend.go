package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/markusressel/vent2go/internal/api"
	"github.com/markusressel/vent2go/internal/configuration"
	"github.com/markusressel/vent2go/internal/control"
	"github.com/markusressel/vent2go/internal/controllers"
	"github.com/markusressel/vent2go/internal/hal"
	"github.com/markusressel/vent2go/internal/persistence"
	"github.com/markusressel/vent2go/internal/statistics"
	"github.com/markusressel/vent2go/internal/telemetry"
	"github.com/markusressel/vent2go/internal/ui"
	"github.com/markusressel/vent2go/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func RunDaemon() {
	config := configuration.CurrentConfig

	if config.Hal.Type == configuration.HalTypeFile && getProcessOwner() != "root" {
		ui.Warning("vent2go is not running as root, writing the valve setpoints will probably fail")
	}

	h, err := hal.New(config.Hal)
	if err != nil {
		ui.Fatal("Unable to initialize hal: %v", err)
	}

	controlConfig, err := NewControlConfig(config)
	if err != nil {
		ui.Fatal("Invalid configuration: %v", err)
	}

	var logger control.DataLogger
	dataLog := openDataLog(config)
	if dataLog != nil {
		logger = dataLog
	}

	module := control.NewModule(controlConfig, h, NewControllerFactory(config.Algorithm), logger)

	if config.Statistics.Enabled {
		statistics.Register(statistics.NewLoopCollector(module))
		statistics.Register(statistics.NewSensorCollector(module))
		statistics.Register(statistics.NewAlarmCollector(module))
		if dataLog != nil {
			statistics.Register(statistics.NewDataLogCollector(dataLog))
		}
	}

	module.Start()

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			port := config.Statistics.Port
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
			addHttpServer(&g, ctx, "statistics", server)
		}
	}
	{
		if config.Api.Enabled {
			// === REST API
			rest := api.CreateRestService(module, prometheus.DefaultRegisterer)
			server := &http.Server{
				Addr:    fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port),
				Handler: rest,
			}
			addHttpServer(&g, ctx, "api", server)
		}
	}
	{
		if config.Profiling.Enabled {
			mux := http.NewServeMux()
			mux.HandleFunc("/debug/pprof/", pprof.Index)
			mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
			mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
			mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
			server := &http.Server{
				Addr:    fmt.Sprintf("%s:%d", config.Profiling.Host, config.Profiling.Port),
				Handler: mux,
			}
			addHttpServer(&g, ctx, "profiling", server)
		}
	}
	{
		if config.Mqtt.Enabled {
			publisher := telemetry.NewPublisher(config.Mqtt, module)
			g.Add(func() error {
				err := publisher.Run(ctx)
				ui.Info("MQTT publisher stopped.")
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Error publishing to MQTT: %v", err)
				}
			})
		}
	}
	{
		if config.Watchdog.Enabled {
			watchdog := NewWatchdog(module, config.Watchdog)
			g.Add(func() error {
				return watchdog.Run(ctx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Watchdog stopped: %v", err)
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	err = g.Run()

	module.Stop()
	if closeErr := module.Close(); closeErr != nil {
		ui.Warning("Error closing data log: %v", closeErr)
	}

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// addHttpServer runs the given server as part of the group, until the context is cancelled
func addHttpServer(g *run.Group, ctx context.Context, name string, server *http.Server) {
	g.Add(func() error {
		ui.Info("Starting %s server on %s", name, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.Error("Cannot start %s server (%s)", name, err.Error())
			<-ctx.Done()
		}
		return nil
	}, func(err error) {
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer timeoutCancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			ui.Warning("Error stopping %s server: %v", name, err)
		} else {
			ui.Info("%s server stopped.", name)
		}
	})
}

// NewControlConfig maps the configuration of the daemon to the control module
func NewControlConfig(config configuration.Configuration) (control.Config, error) {
	rules, err := alarm.DefaultRules.WithLimits(config.Alarms.Limits)
	if err != nil {
		return control.Config{}, err
	}

	return control.Config{
		LoopUpdateTime:       config.Controller.LoopUpdateTime,
		LoopsUntilUpdate:     config.Controller.LoopsUntilUpdate,
		RingBufferSize:       config.Controller.RingBufferSize,
		InterruptJoinTimeout: config.Controller.InterruptJoinTimeout,
		FlushEvery:           config.Logging.FlushEvery,
		ForcedReleaseCycles:  config.Alarms.ForcedReleaseCycles,
		ForcedReleasePause:   config.Alarms.ForcedReleasePause,
		Alarms: alarm.Config{
			CoughDuration:       config.Alarms.CoughDuration,
			StuckSensorDuration: config.Alarms.StuckSensorDuration,
			HeartbeatTimeout:    config.Alarms.HeartbeatTimeout,
			MaxFlow:             config.Alarms.MaxFlow,
			MaxPressure:         config.Alarms.MaxPressure,
		},
		AlarmRules: rules,
		Sampling: control.SamplingConfig{
			OxygenInterval:         config.Sampling.OxygenInterval,
			PressureWindowSize:     config.Sampling.PressureWindowSize,
			FlowBaselineWindowSize: config.Sampling.FlowBaselineWindowSize,
			FlowBaselinePercentile: config.Sampling.FlowBaselinePercentile,
		},
	}, nil
}

// NewControllerFactory creates controllers of the configured algorithm
func NewControllerFactory(config configuration.AlgorithmConfig) control.ControllerFactory {
	params := controllers.Params{
		P: controllers.DefaultPidConfig.P,
		I: controllers.DefaultPidConfig.I,
		D: controllers.DefaultPidConfig.D,
	}
	if config.Pid != nil {
		params.P = config.Pid.P
		params.I = config.Pid.I
		params.D = config.Pid.D
	}
	if config.Predestined != nil {
		params.InletDuty = config.Predestined.InletDuty
	}

	return func(waveform controllers.BreathWaveform) (controllers.Controller, error) {
		return controllers.New(config.Type, waveform, params)
	}
}

// openDataLog opens the data log, returns nil if logging is disabled or not possible
func openDataLog(config configuration.Configuration) *persistence.DataLogger {
	if !config.Logging.Enabled.Get() {
		ui.Info("Data logging is disabled")
		return nil
	}
	dataLog, err := persistence.Open(persistence.Config{
		DbPath:           config.DbPath,
		MaxFileSize:      config.Logging.MaxFileSize,
		MinFreeDiskSpace: config.Logging.MinFreeDiskSpace,
		BufferSize:       config.Logging.BufferSize,
	})
	if err != nil {
		ui.ErrorAndNotify("Data logging disabled", "Unable to open data log, continuing without: %v", err)
		return nil
	}
	return dataLog
}

func getProcessOwner() string {
	owner, err := util.SafeCmdExecution("ps", []string{"-o", "user=", "-p", strconv.Itoa(os.Getpid())}, time.Second)
	if err != nil {
		ui.Warning("Error checking process owner: %v", err)
		return ""
	}
	return owner
}
