package bookings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/paygate"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-TrainingService/pkg/ptr"
)

const (
	trainerID  = int64(10)
	studentID  = int64(20)
	adminID    = int64(99)
	strangerID = int64(55)
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

type fakePayClient struct {
	failCreate  bool
	failCapture bool
	created     int
}

func (f *fakePayClient) CreateOrder(_ context.Context, _ float64, _, _ string) (*paygate.Order, error) {
	if f.failCreate {
		return nil, paygate.ErrGatewayUnavailable
	}
	f.created++
	return &paygate.Order{
		OrderID:     fmt.Sprintf("ORD-%d", f.created),
		ApprovalURL: fmt.Sprintf("https://pay.example/checkout/ORD-%d", f.created),
	}, nil
}

func (f *fakePayClient) CaptureOrder(_ context.Context, orderID string) (*paygate.Capture, error) {
	if f.failCapture {
		return nil, paygate.ErrGatewayUnavailable
	}
	return &paygate.Capture{OrderID: orderID, TransactionID: "TXN-" + orderID, Status: "COMPLETED"}, nil
}

type sentNotification struct {
	UserID int64
	Title  string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) Send(_ context.Context, userID int64, title, _ string) error {
	f.sent = append(f.sent, sentNotification{UserID: userID, Title: title})
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

type testEnv struct {
	svc      *Service
	store    *store.Store
	clock    *clockwork.FakeClock
	pay      *fakePayClient
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	memStore := store.New()
	users := &fakeUserClient{
		users: map[int64]*userservice.User{
			trainerID:  {ID: trainerID, Name: "Иван", Role: userservice.RoleTrainer},
			studentID:  {ID: studentID, Name: "Петя", Email: "petya@example.com", Role: userservice.RoleStudent},
			adminID:    {ID: adminID, Name: "Админ", Role: userservice.RoleAdmin},
			strangerID: {ID: strangerID, Name: "Вася", Role: userservice.RoleStudent},
		},
		trainers: map[int64]*userservice.Trainer{
			trainerID: {ID: trainerID, Name: "Иван", HourlyRate: 2000},
		},
	}
	pay := &fakePayClient{}
	notifier := &fakeNotifier{}

	svc := NewService(memStore, users, pay, notifier, clk, DefaultConfig(), noopLogger{})
	return &testEnv{svc: svc, store: memStore, clock: clk, pay: pay, notifier: notifier}
}

func (e *testEnv) createPending(t *testing.T) *models.BookingResponse {
	t.Helper()

	booking, err := e.svc.CreateRequest(context.Background(), &models.CreateBookingRequest{
		TrainerID:       trainerID,
		UserID:          studentID,
		RequestedDate:   e.clock.Now().Add(72 * time.Hour),
		DurationMinutes: 60,
		Note:            ptr.Ptr("Хочу позаниматься"),
	})
	require.NoError(t, err)
	return booking
}

func (e *testEnv) confirm(t *testing.T, bookingID int64) *models.BookingResponse {
	t.Helper()

	booking, err := e.svc.Confirm(context.Background(), bookingID, &models.ConfirmBookingRequest{
		ActorID:       trainerID,
		ConfirmedDate: e.clock.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return booking
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t)

	booking := env.createPending(t)

	assert.Equal(t, string(domain.StatusPending), booking.Status)
	assert.Equal(t, string(domain.PaymentNone), booking.PaymentStatus)
	assert.Equal(t, 2000.0, booking.Price, "час по ставке тренера")
	assert.Nil(t, booking.SlotID)
	assert.Contains(t, booking.BookingNumber, "TRN-20260301-")

	// Заметка студента становится первым сообщением треда
	require.Len(t, booking.Messages, 1)
	assert.Equal(t, studentID, booking.Messages[0].SenderID)

	// Тренер получил уведомление о новой заявке
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, trainerID, env.notifier.sent[0].UserID)
}

func TestCreateRequestLeadTime(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateRequest(context.Background(), &models.CreateBookingRequest{
		TrainerID:       trainerID,
		UserID:          studentID,
		RequestedDate:   env.clock.Now().Add(12 * time.Hour),
		DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, ErrLeadTime)
}

func TestConfirmMovesToAwaitingPayment(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	confirmed := env.confirm(t, created.ID)

	assert.Equal(t, string(domain.StatusAwaitingPayment), confirmed.Status)
	assert.Equal(t, string(domain.PaymentAwaiting), confirmed.PaymentStatus)
	require.NotNil(t, confirmed.ConfirmedDate)
	require.NotNil(t, confirmed.PaymentDeadline)
	// Дедлайн за 24 часа до подтвержденной даты
	assert.Equal(t, confirmed.ConfirmedDate.Add(-24*time.Hour), *confirmed.PaymentDeadline)
	require.NotNil(t, confirmed.PaymentOrderID)
	require.NotNil(t, confirmed.PaymentLink)

	// Студент получил уведомление с дедлайном
	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, studentID, last.UserID)
}

func TestConfirmDegradedGateway(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.pay.failCreate = true

	confirmed := env.confirm(t, created.ID)

	// Отказ шлюза не блокирует подтверждение
	assert.Equal(t, string(domain.StatusAwaitingPayment), confirmed.Status)
	assert.Nil(t, confirmed.PaymentOrderID)
	assert.Nil(t, confirmed.PaymentLink)
	require.NotNil(t, confirmed.PaymentDeadline)

	// Системное сообщение о ручной оплате
	last := confirmed.Messages[len(confirmed.Messages)-1]
	assert.Equal(t, domain.SystemSenderID, last.SenderID)
}

func TestConfirmExternallyBilled(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	confirmed, err := env.svc.Confirm(context.Background(), created.ID, &models.ConfirmBookingRequest{
		ActorID:          trainerID,
		ConfirmedDate:    env.clock.Now().Add(72 * time.Hour),
		ExternallyBilled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), confirmed.Status)
	assert.Nil(t, confirmed.PaymentDeadline)
	assert.Nil(t, confirmed.PaymentOrderID)
	assert.Equal(t, 0, env.pay.created, "ордер не создавался")
}

func TestConfirmAccessAndState(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	_, err := env.svc.Confirm(ctx, created.ID, &models.ConfirmBookingRequest{
		ActorID:       strangerID,
		ConfirmedDate: env.clock.Now().Add(72 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.Confirm(ctx, created.ID, &models.ConfirmBookingRequest{
		ActorID:       trainerID,
		ConfirmedDate: env.clock.Now().Add(12 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrLeadTime, "дедлайн оплаты остался бы в прошлом")

	env.confirm(t, created.ID)
	_, err = env.svc.Confirm(ctx, created.ID, &models.ConfirmBookingRequest{
		ActorID:       trainerID,
		ConfirmedDate: env.clock.Now().Add(72 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition, "повторное подтверждение")
}

func TestCancelByStudentOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	result, err := env.svc.Cancel(context.Background(), created.ID, &models.CancelBookingRequest{
		ActorID: studentID,
		Reason:  ptr.Ptr("Не смогу прийти"),
	})
	require.NoError(t, err)
	assert.False(t, result.NeedsManualRefund)

	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancellationReason)

	// Тренер уведомлен об отмене студентом
	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, trainerID, last.UserID)
}

func TestCancelByStudentInsideWindow(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	// Подходим ближе чем за 24 часа к началу
	env.clock.Advance(49 * time.Hour)

	_, err := env.svc.Cancel(context.Background(), created.ID, &models.CancelBookingRequest{
		ActorID: studentID,
	})
	assert.ErrorIs(t, err, ErrCancellationWindow)
}

func TestCancelByTrainerInsideWindow(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	env.clock.Advance(49 * time.Hour)

	// Окно отмены ограничивает только самостоятельную отмену студентом
	_, err := env.svc.Cancel(context.Background(), created.ID, &models.CancelBookingRequest{
		ActorID: trainerID,
	})
	assert.NoError(t, err)
}

func TestCancelPaidBookingFlagsManualRefund(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.confirm(t, created.ID)

	_, err := env.svc.ConfirmPaymentManually(context.Background(), created.ID, &models.ConfirmPaymentRequest{
		ActorID: trainerID,
	})
	require.NoError(t, err)

	// Оплаченное бронирование отменяется даже внутри окна
	env.clock.Advance(49 * time.Hour)
	result, err := env.svc.Cancel(context.Background(), created.ID, &models.CancelBookingRequest{
		ActorID: studentID,
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsManualRefund)

	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, stored.PaymentStatus)
	assert.True(t, stored.NeedsManualRefund)

	// Студент уведомлен о ручном возврате
	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, studentID, last.UserID)
}

func TestCancelReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)

	// Привязываем бронирование к занятому слоту
	var slotID int64
	require.NoError(t, env.store.Do(func(tx *store.Txn) error {
		slot := &domain.Slot{ID: tx.NextSlotID(), TrainerID: trainerID, StartTime: env.clock.Now().Add(72 * time.Hour)}
		slot.Book(studentID, env.clock.Now())
		tx.PutSlot(slot)
		slotID = slot.ID

		booking, _ := tx.Booking(created.ID)
		booking.SlotID = &slot.ID
		return nil
	}))

	_, err := env.svc.Cancel(context.Background(), created.ID, &models.CancelBookingRequest{ActorID: studentID})
	require.NoError(t, err)

	slot, err := env.store.GetSlot(slotID)
	require.NoError(t, err)
	assert.False(t, slot.IsBooked, "слот освобожден после отмены")
}

func TestReject(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	err := env.svc.Reject(ctx, created.ID, &models.RejectBookingRequest{ActorID: trainerID})
	assert.ErrorIs(t, err, ErrInvalidInput, "причина обязательна")

	err = env.svc.Reject(ctx, created.ID, &models.RejectBookingRequest{ActorID: trainerID, Reason: "Занят"})
	require.NoError(t, err)

	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)

	err = env.svc.Reject(ctx, created.ID, &models.RejectBookingRequest{ActorID: trainerID, Reason: "Занят"})
	assert.ErrorIs(t, err, ErrInvalidTransition, "отклонить можно только pending")
}

func TestComplete(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	err := env.svc.Complete(ctx, created.ID, trainerID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending нельзя завершить")

	env.confirm(t, created.ID)
	_, err = env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: trainerID})
	require.NoError(t, err)

	require.NoError(t, env.svc.Complete(ctx, created.ID, trainerID))

	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestConfirmPaymentManually(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.confirm(t, created.ID)
	ctx := context.Background()

	paid, err := env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{
		ActorID:        trainerID,
		TransactionRef: ptr.Ptr("банковский перевод 123"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPaid), paid.Status)
	assert.Equal(t, string(domain.PaymentCompleted), paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentTransactionID)

	// Повторное подтверждение - no-op
	again, err := env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: trainerID})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPaid), again.Status)

	_, err = env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: strangerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestHandlePaymentReturn(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	confirmed := env.confirm(t, created.ID)
	ctx := context.Background()

	returnURL := "/api/v1/payments/return?token=" + *confirmed.PaymentOrderID

	paid, err := env.svc.HandlePaymentReturn(ctx, returnURL)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPaid), paid.Status)
	require.NotNil(t, paid.PaymentTransactionID)

	// Повторный коллбек провайдера - идемпотентный успех
	again, err := env.svc.HandlePaymentReturn(ctx, returnURL)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPaid), again.Status)

	_, err = env.svc.HandlePaymentReturn(ctx, "/api/v1/payments/return?token=ORD-missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = env.svc.HandlePaymentReturn(ctx, "/api/v1/payments/return")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandlePaymentReturnCaptureFailure(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	confirmed := env.confirm(t, created.ID)
	env.pay.failCapture = true

	_, err := env.svc.HandlePaymentReturn(context.Background(),
		"/api/v1/payments/return?token="+*confirmed.PaymentOrderID)
	assert.ErrorIs(t, err, ErrPaymentGateway)

	// Бронирование осталось в ожидании оплаты
	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingPayment, stored.Status)
}

func TestExpire(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.confirm(t, created.ID)
	ctx := context.Background()

	// Дедлайн еще не прошел
	expired, err := env.svc.Expire(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, expired)

	env.clock.Advance(49 * time.Hour)

	expired, err = env.svc.Expire(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, expired)

	stored, err := env.store.GetBooking(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, stored.Status)
	assert.Equal(t, domain.PaymentExpired, stored.PaymentStatus)

	// Системное сообщение о просрочке
	last := stored.Messages[len(stored.Messages)-1]
	assert.Equal(t, domain.SystemSenderID, last.SenderID)

	// Повторный вызов - no-op
	expired, err = env.svc.Expire(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestExpireSkipsPaidBooking(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.confirm(t, created.ID)
	ctx := context.Background()

	_, err := env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: trainerID})
	require.NoError(t, err)

	env.clock.Advance(49 * time.Hour)

	expired, err := env.svc.Expire(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, expired, "оплаченное бронирование sweep не трогает")
}

func TestSendStartReminderAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	env.confirm(t, created.ID)
	ctx := context.Background()

	_, err := env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: trainerID})
	require.NoError(t, err)

	// Занятие еще далеко
	reminded, err := env.svc.SendStartReminder(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reminded)

	// За 5 минут до начала
	env.clock.Advance(72*time.Hour - 5*time.Minute)

	reminded, err = env.svc.SendStartReminder(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reminded)

	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, trainerID, last.UserID)

	// Повторный вызов - no-op
	reminded, err = env.svc.SendStartReminder(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reminded)
}

func TestGetByIDAccess(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	for _, actor := range []int64{studentID, trainerID, adminID} {
		_, err := env.svc.GetByID(ctx, created.ID, actor)
		assert.NoError(t, err, "actor %d", actor)
	}

	_, err := env.svc.GetByID(ctx, created.ID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.GetByID(ctx, 999, studentID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListUserBookings(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	result, err := env.svc.ListUserBookings(ctx, studentID, studentID, nil)
	require.NoError(t, err)
	require.Len(t, result.Bookings, 1)
	assert.Equal(t, created.ID, result.Bookings[0].ID)

	// Фильтр по статусу
	status := string(domain.StatusCancelled)
	result, err = env.svc.ListUserBookings(ctx, studentID, studentID, &status)
	require.NoError(t, err)
	assert.Empty(t, result.Bookings)

	bad := "nonsense"
	_, err = env.svc.ListUserBookings(ctx, studentID, studentID, &bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Чужую историю видит только администратор
	_, err = env.svc.ListUserBookings(ctx, studentID, strangerID, nil)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = env.svc.ListUserBookings(ctx, studentID, adminID, nil)
	assert.NoError(t, err)
}

func TestAddMessage(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	msg, err := env.svc.AddMessage(ctx, created.ID, &models.AddMessageRequest{
		ActorID: trainerID,
		Content: "Добрый день!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Иван", msg.SenderName)

	_, err = env.svc.AddMessage(ctx, created.ID, &models.AddMessageRequest{ActorID: studentID})
	assert.ErrorIs(t, err, ErrInvalidInput, "пустое сообщение")

	_, err = env.svc.AddMessage(ctx, created.ID, &models.AddMessageRequest{
		ActorID: strangerID,
		Content: "Привет",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAddMessageAfterTerminalState(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	_, err := env.svc.Cancel(ctx, created.ID, &models.CancelBookingRequest{ActorID: studentID})
	require.NoError(t, err)

	// Тред остается доступным после отмены
	_, err = env.svc.AddMessage(ctx, created.ID, &models.AddMessageRequest{
		ActorID: studentID,
		Content: "Спасибо, до связи",
	})
	assert.NoError(t, err)
}

func TestCallAccess(t *testing.T) {
	env := newTestEnv(t)
	created := env.createPending(t)
	ctx := context.Background()

	// pending не допускает звонок
	access, err := env.svc.CallAccess(ctx, created.ID, trainerID)
	require.NoError(t, err)
	assert.False(t, access.CanStartCall)
	assert.False(t, access.CanJoinCall)

	env.confirm(t, created.ID)
	_, err = env.svc.ConfirmPaymentManually(ctx, created.ID, &models.ConfirmPaymentRequest{ActorID: trainerID})
	require.NoError(t, err)

	// Задолго до начала: присоединиться можно, начать нельзя
	access, err = env.svc.CallAccess(ctx, created.ID, trainerID)
	require.NoError(t, err)
	assert.False(t, access.CanStartCall)
	assert.True(t, access.CanJoinCall)

	// За 5 минут до начала тренер может начать звонок
	env.clock.Advance(72*time.Hour - 5*time.Minute)
	access, err = env.svc.CallAccess(ctx, created.ID, trainerID)
	require.NoError(t, err)
	assert.True(t, access.CanStartCall)

	// Студент начать не может
	access, err = env.svc.CallAccess(ctx, created.ID, studentID)
	require.NoError(t, err)
	assert.False(t, access.CanStartCall)
	assert.True(t, access.CanJoinCall)
}
