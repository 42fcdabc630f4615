// Package config loads service settings from configs/config.yml and
// PUNOGARIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"punogaria/internal/irrigation"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const envPrefix = "PUNOGARIA"

type Config struct {
	Port       string           `mapstructure:"port"`
	LogLevel   string           `mapstructure:"log_level"`
	DB         DBConfig         `mapstructure:"db"`
	Sensor     EndpointConfig   `mapstructure:"sensor"`
	Camera     EndpointConfig   `mapstructure:"camera"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Server     ServerConfig     `mapstructure:"server"`
}

type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// EndpointConfig is a remote HTTP endpoint polled once per iteration.
type EndpointConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SimulationConfig struct {
	Iterations        int                       `mapstructure:"iterations"`
	Interval          time.Duration             `mapstructure:"interval"`
	HumidityThreshold float64                   `mapstructure:"humidity_threshold"`
	Fallback          irrigation.FallbackBounds `mapstructure:"fallback"`
}

// KafkaConfig enables the pump command bus when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// ScheduleConfig enables cron-driven runs when Cron is non-empty.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

type ServerConfig struct {
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	fb := irrigation.DefaultFallbackBounds()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.dsn", ":memory:")
	v.SetDefault("sensor.url", "")
	v.SetDefault("sensor.timeout", 5*time.Second)
	v.SetDefault("camera.url", "")
	v.SetDefault("camera.timeout", 5*time.Second)
	v.SetDefault("simulation.iterations", 20)
	v.SetDefault("simulation.interval", time.Second)
	v.SetDefault("simulation.humidity_threshold", irrigation.DefaultHumidityThreshold)
	v.SetDefault("simulation.fallback.temperature.min", fb.Temperature.Min)
	v.SetDefault("simulation.fallback.temperature.max", fb.Temperature.Max)
	v.SetDefault("simulation.fallback.humidity.min", fb.Humidity.Min)
	v.SetDefault("simulation.fallback.humidity.max", fb.Humidity.Max)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "pump.commands")
	v.SetDefault("schedule.cron", "")
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from the given directories (default "configs"),
// applies environment overrides and validates the result. A missing file is
// not an error.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if err := irrigation.ValidateThreshold(c.Simulation.HumidityThreshold); err != nil {
		return fmt.Errorf("simulation.humidity_threshold: %w", err)
	}
	if c.Simulation.Iterations <= 0 {
		return fmt.Errorf("simulation.iterations must be positive, got %d", c.Simulation.Iterations)
	}
	if c.Simulation.Interval <= 0 {
		return fmt.Errorf("simulation.interval must be positive, got %s", c.Simulation.Interval)
	}
	if c.Sensor.Timeout <= 0 || c.Camera.Timeout <= 0 {
		return errors.New("sensor.timeout and camera.timeout must be positive")
	}
	for name, b := range map[string]irrigation.Bounds{
		"temperature": c.Simulation.Fallback.Temperature,
		"humidity":    c.Simulation.Fallback.Humidity,
	} {
		if b.Min > b.Max {
			return fmt.Errorf("simulation.fallback.%s: min %.1f > max %.1f", name, b.Min, b.Max)
		}
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.brokers is set")
	}
	return nil
}
