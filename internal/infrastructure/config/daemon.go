package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// Unix socket path for IPC
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Prometheus endpoint (host:port), served only when MetricsEnabled
	MetricsAddr    string `mapstructure:"metrics_addr" validate:"required_if=MetricsEnabled true"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`

	// How often the scheduler sweeps for due continuations without a timer
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
