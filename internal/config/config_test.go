package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "memory", cfg.SettingsBackend)
	assert.Equal(t, "log", cfg.MailConfig.Provider)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SelectionTTL)
	assert.False(t, cfg.DBConfig.Enabled)
	assert.False(t, cfg.KafkaConfig.Enabled())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APPOINTMENT_SERVICE_PORT", "9000")
	t.Setenv("APPOINTMENT_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("APPOINTMENT_SETTINGS_BACKEND", "REDIS")
	t.Setenv("APPOINTMENT_NOTIFY_TIMEOUT", "3s")
	t.Setenv("APPOINTMENT_DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "redis", cfg.SettingsBackend)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 6543, cfg.DBConfig.Port)
	assert.Contains(t, cfg.DBConfig.DSN(), "port=6543")
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "APPOINTMENT_SETTINGS_BACKEND", "etcd"},
		{"postgres without db", "APPOINTMENT_SETTINGS_BACKEND", "postgres"},
		{"unknown mail provider", "APPOINTMENT_MAIL_PROVIDER", "pigeon"},
		{"non-positive selection ttl", "APPOINTMENT_SELECTION_TTL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
