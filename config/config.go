package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	OrderEventsTopic   string   `yaml:"order_events_topic"`
	FlightEventsTopic  string   `yaml:"flight_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	SeatHoldTTLMinutes      int `yaml:"seat_hold_ttl_minutes"`
	FlightsCacheTTLSeconds  int `yaml:"flights_cache_ttl_seconds"`
	CancellationFeePercent  int `yaml:"cancellation_fee_percent"`
	OrderCancelCutoffHours  int `yaml:"order_cancel_cutoff_hours"`
	FlightCancelCutoffHours int `yaml:"flight_cancel_cutoff_hours"`
}

type WorkerConfig struct {
	StatusSweepMinutes int `yaml:"status_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.SeatHoldTTLMinutes == 0 {
		c.Booking.SeatHoldTTLMinutes = 10
	}
	if c.Booking.CancellationFeePercent == 0 {
		c.Booking.CancellationFeePercent = 5
	}
	if c.Booking.OrderCancelCutoffHours == 0 {
		c.Booking.OrderCancelCutoffHours = 36
	}
	if c.Booking.FlightCancelCutoffHours == 0 {
		c.Booking.FlightCancelCutoffHours = 72
	}
	if c.Worker.StatusSweepMinutes == 0 {
		c.Worker.StatusSweepMinutes = 5
	}
}
