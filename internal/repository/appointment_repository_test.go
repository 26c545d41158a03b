package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
)

func newAppointment(t *testing.T, slotID string) *appointment.Appointment {
	t.Helper()
	a, err := appointment.NewAppointment(
		schedule.MustParseDate("2025-05-20"),
		schedule.TimeSlot{ID: slotID, Time: "09:00 AM"},
		appointment.Contact{Name: "Ada", Email: "a@b.com"},
	)
	require.NoError(t, err)
	return a
}

func TestMemoryAppointmentRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()
	a := newAppointment(t, "1")

	require.NoError(t, repo.Save(ctx, a))
	assert.True(t, domain.IsConflict(repo.Save(ctx, a)))

	got, err := repo.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.Reference(), got.Reference())
	assert.Equal(t, "2025-05-20", got.Date().String())

	_, err = repo.FindByID(ctx, newAppointment(t, "2").ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryAppointmentRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Save(ctx, newAppointment(t, id)))
	}

	page1, total, err := repo.ListAll(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page1, 2)
	assert.Equal(t, "3", page1[0].SlotID())
	assert.Equal(t, "2", page1[1].SlotID())

	page2, _, err := repo.ListAll(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "1", page2[0].SlotID())
}

func TestMemoryAppointmentRepository_UpdateIsOptimistic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()
	a := newAppointment(t, "1")
	require.NoError(t, repo.Save(ctx, a))

	stale, err := repo.FindByID(ctx, a.ID())
	require.NoError(t, err)

	require.NoError(t, a.MarkNotified())
	require.NoError(t, repo.Update(ctx, a))

	require.NoError(t, stale.MarkNotificationFailed("smtp down"))
	assert.True(t, domain.IsConflict(repo.Update(ctx, stale)))

	counts, err := repo.CountByNotificationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["sent"])
}

func TestMemoryAppointmentRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()
	require.NoError(t, repo.Save(ctx, newAppointment(t, "1")))
	require.NoError(t, repo.Save(ctx, newAppointment(t, "2")))

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, total, err := repo.ListAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormAppointmentRepository_UpdateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	a := newAppointment(t, "1")
	require.NoError(t, a.MarkNotified())

	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGormAppointmentRepository(db).Update(context.Background(), a)
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	a := newAppointment(t, "1")
	require.NoError(t, a.MarkNotificationFailed("timeout"))

	mock.ExpectExec(`UPDATE "appointments" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormAppointmentRepository(db).Update(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAppointmentRepository_DeleteAll(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewGormAppointmentRepository(db).DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
