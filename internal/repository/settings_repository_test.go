package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func customSettings() settings.Settings {
	cfg := settings.Defaults()
	cfg.BusinessName = "Studio Nine"
	cfg.SlotDurationMinutes = 30
	return cfg
}

// settingsContract runs the same behaviour checks against every backend that
// can execute real commands.
func settingsContract(t *testing.T, repo settings.Repository) {
	ctx := context.Background()

	_, found, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, customSettings()))
	got, found, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, customSettings(), got)

	require.NoError(t, repo.Delete(ctx))
	_, found, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemorySettingsRepository(t *testing.T) {
	settingsContract(t, NewMemorySettingsRepository())
}

func TestRedisSettingsRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	settingsContract(t, NewRedisSettingsRepository(client))
}

func TestRedisSettingsRepository_StoresJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	repo := NewRedisSettingsRepository(client)
	require.NoError(t, repo.Set(context.Background(), customSettings()))

	raw, err := mr.Get("appointment:" + SettingsKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"business_name":"Studio Nine"`)
}

func TestRedisSettingsRepository_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	require.NoError(t, mr.Set("appointment:"+SettingsKey, "{not json"))
	_, _, err := NewRedisSettingsRepository(client).Get(context.Background())
	assert.Error(t, err)
}

func TestGormSettingsRepository_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "scheduler_settings" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	_, found, err := NewGormSettingsRepository(db).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSettingsRepository_GetStored(t *testing.T) {
	db, mock := newMockDB(t)
	data, err := json.Marshal(customSettings())
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT \* FROM "scheduler_settings" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow(SettingsKey, data, time.Now()))

	got, found, err := NewGormSettingsRepository(db).Get(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Studio Nine", got.BusinessName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSettingsRepository_SetUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO "scheduler_settings" .* ON CONFLICT \("key"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormSettingsRepository(db).Set(context.Background(), customSettings()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSettingsRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "scheduler_settings" WHERE key = \$1`).
		WithArgs(SettingsKey).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormSettingsRepository(db).Delete(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
