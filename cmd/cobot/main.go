package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-cobot/internal/config"
	"github.com/teslashibe/go-cobot/internal/log"
	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/driver"
	"github.com/teslashibe/go-cobot/pkg/gate"
	"github.com/teslashibe/go-cobot/pkg/kinematics"
	"github.com/teslashibe/go-cobot/pkg/limits"
	"github.com/teslashibe/go-cobot/pkg/speech"
	"github.com/teslashibe/go-cobot/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	serialPort := flag.String("port", "", "Serial port override (e.g. /dev/ttyUSB0)")
	mock := flag.Bool("mock", false, "Run against a simulated arm instead of hardware")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}

	log.Init(cfg.LogLevel)
	logger := log.Component("main")

	policy, err := limits.NewPolicy(jointRanges(cfg), cfg.Motion.ToleranceDeg)
	if err != nil {
		logger.Error("invalid limit configuration", "error", err)
		os.Exit(1)
	}

	home := arm.Pose(cfg.Motion.HomeAngles)
	model := kinematics.MyCobot280()

	dial := func() (driver.Driver, error) {
		if *mock {
			logger.Info("using simulated arm")
			return driver.NewMock(home), nil
		}
		return driver.OpenMyCobot(cfg.Serial.Port, cfg.Serial.Baud)
	}

	// The dashboard is created after the controller but the callbacks
	// close over this variable, so events flow once it exists.
	var srv *web.Server

	ctrl := controller.New(dial, controller.Options{
		Policy:      policy,
		Home:        home,
		HomeSpeed:   cfg.Motion.HomeSpeed,
		ManualSpeed: cfg.Motion.ManualSpeed,
		ConnectWait: time.Duration(cfg.Motion.ConnectWaitMS) * time.Millisecond,
		HomeWait:    time.Duration(cfg.Motion.HomeWaitMS) * time.Millisecond,
		Settle:      time.Duration(cfg.Motion.SettleMS) * time.Millisecond,
		ReadRetries: cfg.Motion.ReadRetries,
		ReadDelay:   time.Duration(cfg.Motion.ReadDelayMS) * time.Millisecond,
		LEDSweep:    !*mock,
	}, controller.Callbacks{
		OnStatus: func(s controller.Status) {
			if srv != nil {
				srv.PublishStatus(s)
			}
		},
		OnPose: func(p arm.Pose) {
			if srv != nil {
				srv.PublishPose(p)
			}
		},
		OnLog: func(msg string) {
			if srv != nil {
				srv.PublishLog(msg)
			}
		},
		OnError: func(msg string) {
			if srv != nil {
				srv.PublishError(msg)
			}
		},
	})

	g := gate.New(ctrl, home, func(msg string) {
		if srv != nil {
			srv.PublishLog(msg)
		}
	})

	if cfg.Web.Enabled {
		srv = web.NewServer(cfg.Web.Port, g, ctrl, model)
		srv.StartAsync()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl.Start()

	var loop *speech.Loop
	if cfg.Speech.GatewayURL != "" {
		rec, err := speech.NewGateway(speech.Config{
			GatewayURL: cfg.Speech.GatewayURL,
			APIKey:     cfg.Speech.APIKey,
			Language:   cfg.Speech.Language,
			SampleRate: cfg.Speech.SampleRate,
		})
		if err != nil {
			logger.Error("speech gateway", "error", err)
			os.Exit(1)
		}
		loop = speech.NewLoop(rec, g)
		loop.OnLive = func(text string) {
			if srv != nil {
				srv.PublishTranscript(text, false)
			}
		}
		loop.OnFinal = func(text string) {
			logger.Info("heard", "text", text)
			if srv != nil {
				srv.PublishTranscript(text, true)
			}
		}
		if err := loop.Start(ctx); err != nil {
			logger.Error("speech start", "error", err)
			os.Exit(1)
		}
		logger.Info("voice control enabled", "gateway", cfg.Speech.GatewayURL)
	} else {
		logger.Warn("no speech gateway configured, voice control disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")

	cancel()
	if loop != nil {
		loop.Stop()
	}
	ctrl.Stop()
	if srv != nil {
		srv.Shutdown()
	}
}

func jointRanges(cfg config.Config) [arm.NumJoints]limits.Range {
	var out [arm.NumJoints]limits.Range
	for i, r := range cfg.Motion.Limits {
		out[i] = limits.Range{Min: r.Min, Max: r.Max}
	}
	return out
}
