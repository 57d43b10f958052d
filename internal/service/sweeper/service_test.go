package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/pkg/ptr"
)

type fakeStore struct {
	bookings []*domain.Booking
}

func (f *fakeStore) ListBookings() []*domain.Booking {
	return f.bookings
}

type fakeManager struct {
	expired   []int64
	reminded  []int64
	expireErr error
	remindErr error
}

func (f *fakeManager) Expire(_ context.Context, bookingID int64) (bool, error) {
	if f.expireErr != nil {
		return false, f.expireErr
	}
	f.expired = append(f.expired, bookingID)
	return true, nil
}

func (f *fakeManager) SendStartReminder(_ context.Context, bookingID int64) (bool, error) {
	if f.remindErr != nil {
		return false, f.remindErr
	}
	f.reminded = append(f.reminded, bookingID)
	return true, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func TestTick(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(now)

	memStore := &fakeStore{bookings: []*domain.Booking{
		// Просроченный дедлайн оплаты
		{ID: 1, Status: domain.StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(now.Add(-time.Hour))},
		// Дедлайн еще впереди
		{ID: 2, Status: domain.StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(now.Add(time.Hour))},
		// Оплачено, начинается через 5 минут - пора напомнить
		{ID: 3, Status: domain.StatusPaid, ConfirmedDate: ptr.Ptr(now.Add(5 * time.Minute))},
		// Подтверждено с внешней оплатой, тоже скоро стартует
		{ID: 4, Status: domain.StatusConfirmed, ConfirmedDate: ptr.Ptr(now.Add(9 * time.Minute))},
		// Начало еще далеко
		{ID: 5, Status: domain.StatusPaid, ConfirmedDate: ptr.Ptr(now.Add(2 * time.Hour))},
		// Уже напоминали
		{ID: 6, Status: domain.StatusPaid, ConfirmedDate: ptr.Ptr(now.Add(5 * time.Minute)), RemindedAt: &now},
		// Терминальные статусы sweeper не трогает
		{ID: 7, Status: domain.StatusCancelled},
		{ID: 8, Status: domain.StatusPending, RequestedDate: now.Add(5 * time.Minute)},
	}}

	manager := &fakeManager{}
	svc := NewService(memStore, manager, clk, 10*time.Minute, nil, noopLogger{})

	svc.Tick(context.Background())

	assert.Equal(t, []int64{1}, manager.expired)
	assert.Equal(t, []int64{3, 4}, manager.reminded)
}

func TestTickManagerErrorsDoNotStopSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(now)

	memStore := &fakeStore{bookings: []*domain.Booking{
		{ID: 1, Status: domain.StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(now.Add(-time.Hour))},
		{ID: 2, Status: domain.StatusPaid, ConfirmedDate: ptr.Ptr(now.Add(5 * time.Minute))},
	}}

	manager := &fakeManager{expireErr: errors.New("store unavailable")}
	svc := NewService(memStore, manager, clk, 10*time.Minute, nil, noopLogger{})

	svc.Tick(context.Background())

	// Ошибка просрочки не мешает отправке напоминания
	assert.Empty(t, manager.expired)
	assert.Equal(t, []int64{2}, manager.reminded)
}

func TestTickStopsOnContextCancel(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(now)

	memStore := &fakeStore{bookings: []*domain.Booking{
		{ID: 1, Status: domain.StatusAwaitingPayment, PaymentDeadline: ptr.Ptr(now.Add(-time.Hour))},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manager := &fakeManager{}
	svc := NewService(memStore, manager, clk, 10*time.Minute, nil, noopLogger{})

	svc.Tick(ctx)

	require.Empty(t, manager.expired)
	require.Empty(t, manager.reminded)
}
