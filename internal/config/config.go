package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig   `toml:"server"`
	Database       DatabaseConfig `toml:"database"`
	Logs           LogsConfig     `toml:"logs"`
	Metrics        MetricsConfig  `toml:"metrics"`
	Booking        BookingConfig  `toml:"booking"`
	Sweeper        SweeperConfig  `toml:"sweeper"`
	Sync           SyncConfig     `toml:"sync"`
	UserService    ClientConfig   `toml:"user_service"`
	PaymentService PaymentConfig  `toml:"payment_service"`
	NotifyService  ClientConfig   `toml:"notify_service"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig временные параметры жизненного цикла бронирований
type BookingConfig struct {
	LeadTimeHours              int `toml:"lead_time_hours"`
	CancellationWindowHours    int `toml:"cancellation_window_hours"`
	PaymentDeadlineOffsetHours int `toml:"payment_deadline_offset_hours"`
	CallStartLeadMinutes       int `toml:"call_start_lead_minutes"`
	ReminderWindowMinutes      int `toml:"reminder_window_minutes"`
}

func (c BookingConfig) LeadTime() time.Duration {
	return time.Duration(c.LeadTimeHours) * time.Hour
}

func (c BookingConfig) CancellationWindow() time.Duration {
	return time.Duration(c.CancellationWindowHours) * time.Hour
}

func (c BookingConfig) PaymentDeadlineOffset() time.Duration {
	return time.Duration(c.PaymentDeadlineOffsetHours) * time.Hour
}

func (c BookingConfig) CallStartLead() time.Duration {
	return time.Duration(c.CallStartLeadMinutes) * time.Minute
}

func (c BookingConfig) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderWindowMinutes) * time.Minute
}

type SweeperConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type SyncConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// ClientConfig настройки HTTP-клиента внешнего сервиса
type ClientConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// PaymentConfig настройки клиента платёжного шлюза
type PaymentConfig struct {
	URL      string `toml:"url"`
	Timeout  int    `toml:"timeout"`
	Currency string `toml:"currency"`
}

// Load читает конфигурацию из TOML-файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfig значения по умолчанию, перекрываются файлом
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8083,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Logs: LogsConfig{
			File:  "logs/app.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "training-service",
		},
		Booking: BookingConfig{
			LeadTimeHours:              24,
			CancellationWindowHours:    24,
			PaymentDeadlineOffsetHours: 24,
			CallStartLeadMinutes:       10,
			ReminderWindowMinutes:      10,
		},
		Sweeper: SweeperConfig{IntervalSeconds: 60},
		Sync:    SyncConfig{IntervalSeconds: 300},
	}
}
