package book_slot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/pkg/ptr"
)

const (
	trainerID = int64(10)
	studentID = int64(20)
	otherID   = int64(21)
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

type fakeNotifier struct {
	mu   sync.Mutex
	sent []int64
}

func (f *fakeNotifier) Send(_ context.Context, userID int64, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, userID)
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func newTestUseCase(t *testing.T) (*UseCase, *store.Store, *clockwork.FakeClock, *fakeNotifier) {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	memStore := store.New()
	users := &fakeUserClient{
		users: map[int64]*userservice.User{
			studentID: {ID: studentID, Name: "Петя", Email: "petya@example.com", Role: userservice.RoleStudent},
			otherID:   {ID: otherID, Name: "Вася", Role: userservice.RoleStudent},
		},
		trainers: map[int64]*userservice.Trainer{
			trainerID: {ID: trainerID, Name: "Иван", HourlyRate: 2000},
		},
	}
	notifier := &fakeNotifier{}
	uc := NewUseCase(memStore, users, notifier, clk, 24*time.Hour, noopLogger{})
	return uc, memStore, clk, notifier
}

func seedSlot(t *testing.T, memStore *store.Store, start time.Time) int64 {
	t.Helper()

	var id int64
	require.NoError(t, memStore.Do(func(tx *store.Txn) error {
		slot := &domain.Slot{
			ID:              tx.NextSlotID(),
			TrainerID:       trainerID,
			StartTime:       start,
			DurationMinutes: 90,
			Price:           3000,
		}
		tx.PutSlot(slot)
		id = slot.ID
		return nil
	}))
	return id
}

func TestExecute(t *testing.T) {
	uc, memStore, clk, notifier := newTestUseCase(t)
	start := clk.Now().Add(48 * time.Hour)
	slotID := seedSlot(t, memStore, start)

	resp, err := uc.Execute(context.Background(), &Request{
		SlotID: slotID,
		UserID: studentID,
		Note:   ptr.Ptr("Первое занятие"),
	})
	require.NoError(t, err)

	booking := resp.Booking
	assert.Equal(t, string(domain.StatusPending), booking.Status)
	require.NotNil(t, booking.SlotID)
	assert.Equal(t, slotID, *booking.SlotID)
	// Бронирование наследует параметры слота
	assert.Equal(t, start, booking.RequestedDate)
	assert.Equal(t, 90, booking.DurationMinutes)
	assert.Equal(t, 3000.0, booking.Price)
	assert.Equal(t, "Иван", booking.TrainerName)

	// Заметка студента стала первым сообщением треда
	require.Len(t, booking.Messages, 1)
	assert.Equal(t, "Первое занятие", booking.Messages[0].Content)

	slot, err := memStore.GetSlot(slotID)
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	require.NotNil(t, slot.BookedByUserID)
	assert.Equal(t, studentID, *slot.BookedByUserID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, trainerID, notifier.sent[0])
}

func TestExecuteSlotNotFound(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.Execute(context.Background(), &Request{SlotID: 404, UserID: studentID})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecuteUserNotFound(t *testing.T) {
	uc, memStore, clk, _ := newTestUseCase(t)
	slotID := seedSlot(t, memStore, clk.Now().Add(48*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{SlotID: slotID, UserID: 777})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExecuteAlreadyBooked(t *testing.T) {
	uc, memStore, clk, _ := newTestUseCase(t)
	slotID := seedSlot(t, memStore, clk.Now().Add(48*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{SlotID: slotID, UserID: studentID})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{SlotID: slotID, UserID: otherID})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
}

func TestExecuteLeadTime(t *testing.T) {
	uc, memStore, clk, _ := newTestUseCase(t)
	slotID := seedSlot(t, memStore, clk.Now().Add(12*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{SlotID: slotID, UserID: studentID})
	assert.ErrorIs(t, err, ErrLeadTime)
}

func TestExecuteValidation(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{SlotID: 0, UserID: studentID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{SlotID: 1, UserID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecuteConcurrentDoubleBooking(t *testing.T) {
	uc, memStore, clk, _ := newTestUseCase(t)
	slotID := seedSlot(t, memStore, clk.Now().Add(48*time.Hour))

	// Два студента бронируют один слот одновременно: ровно один выигрывает
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{studentID, otherID} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{SlotID: slotID, UserID: userID})
		}(i, userID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
		}
	}
	assert.Equal(t, 1, winners)

	bookings := memStore.ListBookings()
	assert.Len(t, bookings, 1)
}
