package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsKey is the single key under which scheduler settings are stored.
const SettingsKey = "scheduler_settings"

// --- Memory ---

// MemorySettingsRepository holds settings in process memory.
type MemorySettingsRepository struct {
	mu    sync.RWMutex
	value *settings.Settings
}

// NewMemorySettingsRepository creates an empty in-memory settings store.
func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) Get(_ context.Context) (settings.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.value == nil {
		return settings.Settings{}, false, nil
	}
	return *r.value, true, nil
}

func (r *MemorySettingsRepository) Set(_ context.Context, cfg settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = &cfg
	return nil
}

func (r *MemorySettingsRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = nil
	return nil
}

// --- Redis ---

// RedisSettingsRepository stores settings as a JSON string in Redis.
type RedisSettingsRepository struct {
	redis *redis.Client
	key   string
}

// NewRedisSettingsRepository creates a Redis-backed settings store.
func NewRedisSettingsRepository(client *redis.Client) *RedisSettingsRepository {
	return &RedisSettingsRepository{redis: client, key: "appointment:" + SettingsKey}
}

func (r *RedisSettingsRepository) Get(ctx context.Context) (settings.Settings, bool, error) {
	data, err := r.redis.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return settings.Settings{}, false, nil
	}
	if err != nil {
		return settings.Settings{}, false, fmt.Errorf("settings: redis get: %w", err)
	}

	var cfg settings.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return settings.Settings{}, false, fmt.Errorf("settings: unmarshal: %w", err)
	}
	return cfg, true, nil
}

func (r *RedisSettingsRepository) Set(ctx context.Context, cfg settings.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := r.redis.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("settings: redis set: %w", err)
	}
	return nil
}

func (r *RedisSettingsRepository) Delete(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("settings: redis del: %w", err)
	}
	return nil
}

// --- PostgreSQL ---

// SettingsModel is the GORM model for the scheduler_settings key/value table.
type SettingsModel struct {
	Key       string          `gorm:"primaryKey;size:64"`
	Value     json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SettingsModel) TableName() string {
	return "scheduler_settings"
}

// GormSettingsRepository stores settings as a JSONB row.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a PostgreSQL-backed settings store.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) Get(ctx context.Context) (settings.Settings, bool, error) {
	var model SettingsModel
	if err := r.db.WithContext(ctx).Where("key = ?", SettingsKey).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settings.Settings{}, false, nil
		}
		return settings.Settings{}, false, fmt.Errorf("failed to load settings: %w", err)
	}

	var cfg settings.Settings
	if err := json.Unmarshal(model.Value, &cfg); err != nil {
		return settings.Settings{}, false, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return cfg, true, nil
}

func (r *GormSettingsRepository) Set(ctx context.Context, cfg settings.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	model := SettingsModel{Key: SettingsKey, Value: data, UpdatedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *GormSettingsRepository) Delete(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("key = ?", SettingsKey).Delete(&SettingsModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
