// Package config loads daemon configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Robot    RobotConfig
	Camera   CameraConfig
	Control  ControlConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// RobotConfig holds robot connection settings.
type RobotConfig struct {
	Host          string
	DashboardPort int
	ScriptPort    int
	MainProgram   string
	IOTimeout     time.Duration
	Simulate      bool
}

// CameraConfig holds capture settings.
type CameraConfig struct {
	Device int
	Width  int
	Height int
	FPS    int
}

// ControlConfig holds the gesture control timings.
type ControlConfig struct {
	StartHold      time.Duration
	StopHold       time.Duration
	ConfirmTimeout time.Duration
	PulseDuration  time.Duration
	MaxRunningTime time.Duration
	ConfirmCount   int
	HistorySize    int
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix MUDRA_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("robot.host", "192.168.1.10")
	v.SetDefault("robot.dashboard_port", 29999)
	v.SetDefault("robot.script_port", 30002)
	v.SetDefault("robot.main_program", "main.urp")
	v.SetDefault("robot.io_timeout", "2s")
	v.SetDefault("robot.simulate", false)
	v.SetDefault("camera.device", 0)
	v.SetDefault("camera.width", 960)
	v.SetDefault("camera.height", 540)
	v.SetDefault("camera.fps", 15)
	v.SetDefault("control.start_hold", "3s")
	v.SetDefault("control.stop_hold", "3s")
	v.SetDefault("control.confirm_timeout", "5s")
	v.SetDefault("control.pulse_duration", "200ms")
	v.SetDefault("control.max_running_time", "15s")
	v.SetDefault("control.confirm_count", 15)
	v.SetDefault("control.history_size", 8)
	v.SetDefault("server.addr", "127.0.0.1:8765")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "mudra", "mudra.db"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MUDRA_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mudra"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MUDRA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
