package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/renderix/mudra/internal/app"
	"github.com/renderix/mudra/internal/capture"
	"github.com/renderix/mudra/internal/config"
	"github.com/renderix/mudra/internal/detector"
	"github.com/renderix/mudra/internal/fsm"
	"github.com/renderix/mudra/internal/metrics"
	"github.com/renderix/mudra/internal/robot"
	"github.com/renderix/mudra/internal/server"
	"github.com/renderix/mudra/internal/store"
	"github.com/renderix/mudra/internal/tray"
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Mudra controls robot arm routines with hand gestures",
	Long: `Mudra watches a camera for hand gestures and drives a robot arm
controller: hold an open palm to arm, rotate a pointed finger to select a
routine, repeat the rotation to confirm, and hold a fist to stop.`,
	RunE: run,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().String("config", "", "path to the config file")
	rootCmd.Flags().String("robot-host", "", "robot controller address (overrides config)")
	rootCmd.Flags().Bool("simulate", false, "simulate the robot instead of connecting")
	rootCmd.Flags().Int("camera", -1, "camera device ID (overrides config)")
	rootCmd.Flags().String("addr", "", "HTTP API listen address (overrides config)")
	rootCmd.Flags().String("db", "", "database path (overrides config)")
	rootCmd.Flags().Bool("no-tray", false, "run without the system tray")
}

func run(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("MUDRA_CONFIG", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	m := metrics.New()

	actuator, controller := newActuator(cfg)
	if controller != nil {
		defer controller.Close()
	}

	det := newDetector()
	camera := capture.NewCameraWithSize(cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height)
	camera.SetFPS(cfg.Camera.FPS)

	application := app.New(
		app.Config{
			Engine: fsm.Config{
				StartHold:      cfg.Control.StartHold,
				StopHold:       cfg.Control.StopHold,
				ConfirmTimeout: cfg.Control.ConfirmTimeout,
				PulseDuration:  cfg.Control.PulseDuration,
				MaxRunningTime: cfg.Control.MaxRunningTime,
				ConfirmCount:   cfg.Control.ConfirmCount,
			},
			TickRate:    cfg.Camera.FPS,
			HistorySize: cfg.Control.HistorySize,
			Simulated:   controller == nil,
		},
		camera,
		det,
		metrics.WrapActuator(actuator, m),
		st,
		m,
	)

	if err := application.Start(); err != nil {
		return fmt.Errorf("start control loop: %w", err)
	}
	defer application.Stop()

	srv := server.New(server.Config{
		Store:   st,
		Status:  application.Status,
		Metrics: m.Handler(),
	})
	serverErr := serveAPI(srv, cfg.Server.Addr)

	if noTray, _ := cmd.Flags().GetBool("no-tray"); noTray {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
			return nil
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		}
	}

	// The tray loop owns the foreground; a dead API server should not take
	// the control loop down with it, so just log and keep running.
	go func() {
		if err := <-serverErr; err != nil {
			log.Printf("HTTP server failed: %v", err)
		}
	}()

	runTray(application)
	return nil
}

// serveAPI starts the HTTP server in the background and delivers its
// terminal error on the returned channel.
func serveAPI(srv *server.Server, addr string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe(addr)
	}()
	return errCh
}

// applyFlags overlays explicitly set command line flags on the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("robot-host") {
		cfg.Robot.Host, _ = cmd.Flags().GetString("robot-host")
	}
	if cmd.Flags().Changed("simulate") {
		cfg.Robot.Simulate, _ = cmd.Flags().GetBool("simulate")
	}
	if cmd.Flags().Changed("camera") {
		cfg.Camera.Device, _ = cmd.Flags().GetInt("camera")
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path, _ = cmd.Flags().GetString("db")
	}
}

// newActuator connects to the robot controller, falling back to the
// simulator when simulation is requested or the controller is unreachable.
// The returned controller is nil when simulating.
func newActuator(cfg config.Config) (robot.Actuator, *robot.Controller) {
	if cfg.Robot.Simulate {
		log.Println("SIMULATION: robot actuation is simulated")
		return robot.NewSimulator(), nil
	}

	controller := robot.NewController(robot.Config{
		Host:          cfg.Robot.Host,
		DashboardPort: cfg.Robot.DashboardPort,
		ScriptPort:    cfg.Robot.ScriptPort,
		IOTimeout:     cfg.Robot.IOTimeout,
		MainProgram:   cfg.Robot.MainProgram,
	})
	if err := controller.Connect(); err != nil {
		log.Printf("Robot controller unreachable (%v), falling back to simulation", err)
		return robot.NewSimulator(), nil
	}
	return controller, controller
}

// newDetector prefers MediaPipe and falls back to the mock detector so the
// daemon still starts on machines without the helper installed.
func newDetector() detector.Detector {
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		log.Println("Using MediaPipe hand detection")
		return mp
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
	}
	return detector.NewMockDetector()
}

// runTray blocks on the system tray loop and mirrors the loop status into
// the tray menu.
func runTray(application *app.App) {
	t := tray.New()
	t.OnQuit(func() {
		application.Stop()
	})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			status := application.Status()
			t.SetState(status.State)
			gesture := status.LastStatic
			if status.LastDynamic != "" {
				gesture = status.LastDynamic
			}
			t.SetLastGesture(gesture)
		}
	}()

	t.Run()
}
