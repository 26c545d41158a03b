package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "APPOINTMENT"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string understood by the postgres driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailConfig selects and configures the confirmation email transport.
type MailConfig struct {
	Provider       string // log, smtp or sendgrid
	FromEmail      string
	FromName       string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string
}

// ServiceConfig holds all configuration for the appointment service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	Timezone        string
	SettingsBackend string // memory, redis or postgres
	SeedSampleData  bool
	NotifyTimeout   time.Duration
	SelectionTTL    time.Duration
	DBConfig        DatabaseConfig
	KafkaConfig     KafkaConfig
	RedisConfig     RedisConfig
	MailConfig      MailConfig
}

// Location resolves Timezone, falling back to UTC.
func (c *ServiceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from a .env file (if present) and APPOINTMENT_* environment variables.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:            ":" + strings.TrimPrefix(v.GetString("SERVICE_PORT"), ":"),
		AppEnv:          v.GetString("APP_ENV"),
		Timezone:        v.GetString("TIMEZONE"),
		SettingsBackend: strings.ToLower(v.GetString("SETTINGS_BACKEND")),
		SeedSampleData:  v.GetBool("SEED_SAMPLE_DATA"),
		NotifyTimeout:   v.GetDuration("NOTIFY_TIMEOUT"),
		SelectionTTL:    v.GetDuration("SELECTION_TTL"),
		DBConfig: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MailConfig: MailConfig{
			Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
			FromEmail:      v.GetString("MAIL_FROM_EMAIL"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
			SMTPHost:       v.GetString("SMTP_HOST"),
			SMTPPort:       v.GetInt("SMTP_PORT"),
			SMTPUsername:   v.GetString("SMTP_USERNAME"),
			SMTPPassword:   v.GetString("SMTP_PASSWORD"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8085")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("SETTINGS_BACKEND", "memory")
	v.SetDefault("SEED_SAMPLE_DATA", false)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("SELECTION_TTL", "30m")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "appointment_db")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@example.com")
	v.SetDefault("MAIL_FROM_NAME", "Appointments")
	v.SetDefault("SMTP_PORT", 587)
}

func (c *ServiceConfig) validate() error {
	switch c.SettingsBackend {
	case "memory", "redis":
	case "postgres":
		if !c.DBConfig.Enabled {
			return fmt.Errorf("config: settings backend %q requires DB_ENABLED", c.SettingsBackend)
		}
	default:
		return fmt.Errorf("config: unknown settings backend %q", c.SettingsBackend)
	}
	switch c.MailConfig.Provider {
	case "log", "smtp", "sendgrid":
	default:
		return fmt.Errorf("config: unknown mail provider %q", c.MailConfig.Provider)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("config: notify timeout must be positive")
	}
	if c.SelectionTTL <= 0 {
		return fmt.Errorf("config: selection ttl must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
