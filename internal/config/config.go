package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var (
	ErrReadConfig    = errors.New("config: failed to read config file")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config корневая конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Studio   StudioConfig   `toml:"studio"`
	Policy   PolicyConfig   `toml:"policy"`
	Stripe   StripeConfig   `toml:"stripe"`
	TTLock   TTLockConfig   `toml:"ttlock"`
	Mailer   MailerConfig   `toml:"mailer"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Auth     AuthConfig     `toml:"auth"`
	Outbox   OutboxConfig   `toml:"outbox"`
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

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
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

type StudioConfig struct {
	Timezone      string `toml:"timezone"`
	TotalBays     int    `toml:"total_bays"`
	MorningCutoff string `toml:"morning_cutoff"`
}

// Location часовой пояс студии
func (s StudioConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

type PolicyConfig struct {
	CancellationCutoffHours int `toml:"cancellation_cutoff_hours"`
	AccessMinutesBefore     int `toml:"access_minutes_before"`
	AccessMinutesAfter      int `toml:"access_minutes_after"`
}

func (p PolicyConfig) CancellationCutoff() time.Duration {
	return time.Duration(p.CancellationCutoffHours) * time.Hour
}

func (p PolicyConfig) AccessBefore() time.Duration {
	return time.Duration(p.AccessMinutesBefore) * time.Minute
}

func (p PolicyConfig) AccessAfter() time.Duration {
	return time.Duration(p.AccessMinutesAfter) * time.Minute
}

type StripeConfig struct {
	APIURL                    string `toml:"api_url"`
	SecretKey                 string `toml:"secret_key"`
	WebhookSecret             string `toml:"webhook_secret"`
	Currency                  string `toml:"currency"`
	SuccessURL                string `toml:"success_url"`
	CancelURL                 string `toml:"cancel_url"`
	SignatureToleranceSeconds int    `toml:"signature_tolerance_seconds"`
	Timeout                   int    `toml:"timeout"`
	MaxNetworkRetries         int64  `toml:"max_network_retries"`
}

type TTLockConfig struct {
	APIURL       string `toml:"api_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	LockID       int64  `toml:"lock_id"`
	Timeout      int    `toml:"timeout"`
}

type MailerConfig struct {
	APIURL    string `toml:"api_url"`
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
	Timeout   int    `toml:"timeout"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RabbitMQConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Queue   string `toml:"queue"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type OutboxConfig struct {
	PollIntervalMs int   `toml:"poll_interval_ms"`
	BatchSize      int   `toml:"batch_size"`
	MaxAttempts    int   `toml:"max_attempts"`
	BackoffSeconds []int `toml:"backoff_seconds"`
}

func (o OutboxConfig) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMs) * time.Millisecond
}

func (o OutboxConfig) Backoff() []time.Duration {
	out := make([]time.Duration, 0, len(o.BackoffSeconds))
	for _, s := range o.BackoffSeconds {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

// Load читает config.toml, подгружает .env (если есть) и применяет переменные окружения
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "studio_booking"},
		Studio: StudioConfig{
			Timezone:      "Europe/Madrid",
			TotalBays:     3,
			MorningCutoff: "14:00",
		},
		Policy: PolicyConfig{
			CancellationCutoffHours: 24,
			AccessMinutesBefore:     15,
			AccessMinutesAfter:      15,
		},
		Stripe: StripeConfig{
			APIURL:                    "https://api.stripe.com",
			Currency:                  "eur",
			SignatureToleranceSeconds: 300,
			Timeout:                   10,
			MaxNetworkRetries:         2,
		},
		TTLock: TTLockConfig{
			APIURL:  "https://euapi.ttlock.com",
			Timeout: 10,
		},
		Mailer: MailerConfig{
			APIURL:  "https://api.brevo.com",
			Timeout: 10,
		},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		RabbitMQ: RabbitMQConfig{Queue: "studio.notifications"},
		Outbox: OutboxConfig{
			PollIntervalMs: 1000,
			BatchSize:      10,
			MaxAttempts:    8,
			BackoffSeconds: []int{5, 30, 120, 600, 1800},
		},
	}
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"DB_PASSWORD":           &cfg.Database.Password,
		"STRIPE_SECRET_KEY":     &cfg.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": &cfg.Stripe.WebhookSecret,
		"TTLOCK_CLIENT_ID":      &cfg.TTLock.ClientID,
		"TTLOCK_CLIENT_SECRET":  &cfg.TTLock.ClientSecret,
		"TTLOCK_USERNAME":       &cfg.TTLock.Username,
		"TTLOCK_PASSWORD":       &cfg.TTLock.Password,
		"MAILER_API_KEY":        &cfg.Mailer.APIKey,
		"JWT_SECRET":            &cfg.Auth.JWTSecret,
		"REDIS_PASSWORD":        &cfg.Redis.Password,
		"RABBITMQ_URL":          &cfg.RabbitMQ.URL,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
}

// Validate проверяет значения, без которых сервис не может работать корректно
func (c *Config) Validate() error {
	var problems []string

	if c.Studio.TotalBays <= 0 {
		problems = append(problems, "studio.total_bays must be positive")
	}
	if _, err := c.Studio.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("studio.timezone %q: %v", c.Studio.Timezone, err))
	}
	if c.Policy.CancellationCutoffHours < 0 {
		problems = append(problems, "policy.cancellation_cutoff_hours must not be negative")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if c.Stripe.WebhookSecret == "" {
		problems = append(problems, "stripe.webhook_secret is required")
	}
	if c.Outbox.MaxAttempts <= 0 {
		problems = append(problems, "outbox.max_attempts must be positive")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		problems = append(problems, "rabbitmq.url is required when rabbitmq is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
