package slots

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/internal/service/slots/models"
)

type fakeUserClient struct {
	users    map[int64]*userservice.User
	trainers map[int64]*userservice.Trainer
}

func (f *fakeUserClient) GetUser(_ context.Context, id int64) (*userservice.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, userservice.ErrUserNotFound
}

func (f *fakeUserClient) GetTrainer(_ context.Context, id int64) (*userservice.Trainer, error) {
	if tr, ok := f.trainers[id]; ok {
		return tr, nil
	}
	return nil, userservice.ErrTrainerNotFound
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

const (
	trainerID = int64(10)
	adminID   = int64(99)
	otherID   = int64(55)
)

func newTestService(t *testing.T) (*Service, *store.Store, *clockwork.FakeClock) {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	memStore := store.New()
	users := &fakeUserClient{
		users: map[int64]*userservice.User{
			trainerID: {ID: trainerID, Name: "Иван", Role: userservice.RoleTrainer},
			adminID:   {ID: adminID, Name: "Админ", Role: userservice.RoleAdmin},
			otherID:   {ID: otherID, Name: "Петя", Role: userservice.RoleStudent},
		},
		trainers: map[int64]*userservice.Trainer{
			trainerID: {ID: trainerID, Name: "Иван", HourlyRate: 2000},
		},
	}

	return NewService(memStore, users, clk, 24*time.Hour, noopLogger{}), memStore, clk
}

func TestCreateSlot(t *testing.T) {
	svc, _, clk := newTestService(t)

	slot, err := svc.CreateSlot(context.Background(), &models.CreateSlotRequest{
		TrainerID:       trainerID,
		ActorID:         trainerID,
		StartTime:       clk.Now().Add(48 * time.Hour),
		DurationMinutes: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), slot.ID)
	// Цена из почасовой ставки: 2000 * 90 / 60
	assert.Equal(t, 3000.0, slot.Price)
	assert.False(t, slot.IsBooked)
}

func TestCreateSlotByAdmin(t *testing.T) {
	svc, _, clk := newTestService(t)

	_, err := svc.CreateSlot(context.Background(), &models.CreateSlotRequest{
		TrainerID:       trainerID,
		ActorID:         adminID,
		StartTime:       clk.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
	})
	assert.NoError(t, err)
}

func TestCreateSlotAccessDenied(t *testing.T) {
	svc, _, clk := newTestService(t)

	_, err := svc.CreateSlot(context.Background(), &models.CreateSlotRequest{
		TrainerID:       trainerID,
		ActorID:         otherID,
		StartTime:       clk.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCreateSlotValidation(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, &models.CreateSlotRequest{
		TrainerID: trainerID, ActorID: trainerID,
		StartTime: clk.Now().Add(48 * time.Hour), DurationMinutes: 10,
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "duration below minimum")

	_, err = svc.CreateSlot(ctx, &models.CreateSlotRequest{
		TrainerID: trainerID, ActorID: trainerID,
		StartTime: clk.Now().Add(-time.Hour), DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "start time in the past")
}

func TestDeleteSlot(t *testing.T) {
	svc, memStore, clk := newTestService(t)

	slot, err := svc.CreateSlot(context.Background(), &models.CreateSlotRequest{
		TrainerID: trainerID, ActorID: trainerID,
		StartTime: clk.Now().Add(48 * time.Hour), DurationMinutes: 60,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSlot(context.Background(), slot.ID, trainerID))

	_, err = memStore.GetSlot(slot.ID)
	assert.ErrorIs(t, err, store.ErrSlotNotFound)
}

func TestDeleteBookedSlot(t *testing.T) {
	svc, memStore, clk := newTestService(t)

	slot, err := svc.CreateSlot(context.Background(), &models.CreateSlotRequest{
		TrainerID: trainerID, ActorID: trainerID,
		StartTime: clk.Now().Add(48 * time.Hour), DurationMinutes: 60,
	})
	require.NoError(t, err)

	require.NoError(t, memStore.Do(func(tx *store.Txn) error {
		s, _ := tx.Slot(slot.ID)
		s.Book(otherID, clk.Now())
		return nil
	}))

	err = svc.DeleteSlot(context.Background(), slot.ID, trainerID)
	assert.ErrorIs(t, err, ErrSlotBooked)
}

func TestAvailableSlotsFiltersLeadTimeAndBooked(t *testing.T) {
	svc, memStore, clk := newTestService(t)
	now := clk.Now()

	require.NoError(t, memStore.Do(func(tx *store.Txn) error {
		// Свободный за пределами lead time
		tx.PutSlot(&domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: now.Add(48 * time.Hour)})
		// Слишком близко к началу
		tx.PutSlot(&domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: now.Add(12 * time.Hour)})
		// Занят
		booked := &domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: now.Add(72 * time.Hour)}
		booked.Book(otherID, now)
		tx.PutSlot(booked)
		// Чужой тренер
		tx.PutSlot(&domain.Slot{ID: tx.NextSlotID(), TrainerID: 77, StartTime: now.Add(48 * time.Hour)})
		return nil
	}))

	result, err := svc.AvailableSlots(context.Background(), trainerID)
	require.NoError(t, err)
	require.Len(t, result.Slots, 1)
	assert.Equal(t, int64(1), result.Slots[0].ID)
}

func TestTrainerSlotsIncludesBooked(t *testing.T) {
	svc, memStore, clk := newTestService(t)
	now := clk.Now()

	require.NoError(t, memStore.Do(func(tx *store.Txn) error {
		free := &domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: now.Add(48 * time.Hour)}
		booked := &domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: now.Add(72 * time.Hour)}
		booked.Book(otherID, now)
		tx.PutSlot(free)
		tx.PutSlot(booked)
		return nil
	}))

	result, err := svc.TrainerSlots(context.Background(), trainerID, trainerID)
	require.NoError(t, err)
	assert.Len(t, result.Slots, 2)

	_, err = svc.TrainerSlots(context.Background(), trainerID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
