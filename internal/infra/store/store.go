package store

import (
	"sort"
	"sync"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// Store in-memory хранилище слотов и бронирований
//
// Все мутации проходят через Do и выполняются под общим мьютексом - это
// даёт single-writer дисциплину: check-and-set бронирования слота и каждый
// переход состояния сериализованы. Проигравший конкурентный писатель
// перечитывает состояние внутри Do и получает StateConflict от своей
// проверки предусловий, а не портит данные.
//
// Читатели получают глубокие копии и не делят память с писателями.
type Store struct {
	mu         sync.RWMutex
	slots      map[int64]*domain.Slot
	bookings   map[int64]*domain.Booking
	slotSeq    int64
	bookingSeq int64
	messageSeq int64
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		slots:    make(map[int64]*domain.Slot),
		bookings: make(map[int64]*domain.Booking),
	}
}

// Txn даёт доступ к хранилищу внутри сериализованной секции Do
type Txn struct {
	s *Store
}

// Do выполняет fn под эксклюзивной блокировкой хранилища.
// Отката нет - fn обязана проверять предусловия до любых мутаций,
// отклонённая операция не трогает состояние.
func (s *Store) Do(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Txn{s: s})
}

// Slot возвращает слот по ID (живой указатель, только внутри Do)
func (tx *Txn) Slot(id int64) (*domain.Slot, bool) {
	slot, ok := tx.s.slots[id]
	return slot, ok
}

// Booking возвращает бронирование по ID (живой указатель, только внутри Do)
func (tx *Txn) Booking(id int64) (*domain.Booking, bool) {
	booking, ok := tx.s.bookings[id]
	return booking, ok
}

// PutSlot сохраняет слот
func (tx *Txn) PutSlot(slot *domain.Slot) {
	tx.s.slots[slot.ID] = slot
}

// PutBooking сохраняет бронирование
func (tx *Txn) PutBooking(booking *domain.Booking) {
	tx.s.bookings[booking.ID] = booking
}

// DeleteSlot удаляет слот
func (tx *Txn) DeleteSlot(id int64) {
	delete(tx.s.slots, id)
}

// Bookings возвращает все бронирования (живые указатели, только внутри Do)
func (tx *Txn) Bookings() []*domain.Booking {
	result := make([]*domain.Booking, 0, len(tx.s.bookings))
	for _, b := range tx.s.bookings {
		result = append(result, b)
	}
	return result
}

// NextSlotID выдает следующий ID слота
func (tx *Txn) NextSlotID() int64 {
	tx.s.slotSeq++
	return tx.s.slotSeq
}

// NextBookingID выдает следующий ID бронирования
func (tx *Txn) NextBookingID() int64 {
	tx.s.bookingSeq++
	return tx.s.bookingSeq
}

// NextMessageID выдает следующий ID сообщения
func (tx *Txn) NextMessageID() int64 {
	tx.s.messageSeq++
	return tx.s.messageSeq
}

// GetSlot возвращает копию слота по ID
func (s *Store) GetSlot(id int64) (*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return slot.Clone(), nil
}

// ListSlots возвращает копии всех слотов, отсортированные по времени начала
func (s *Store) ListSlots() []*domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		result = append(result, slot.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

// GetBooking возвращает копию бронирования по ID
func (s *Store) GetBooking(id int64) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return booking.Clone(), nil
}

// FindBookingByOrderID возвращает копию бронирования по ID платёжного ордера
func (s *Store) FindBookingByOrderID(orderID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.PaymentOrderID != nil && *b.PaymentOrderID == orderID {
			return b.Clone(), nil
		}
	}
	return nil, ErrBookingNotFound
}

// ListBookings возвращает копии всех бронирований, отсортированные по ID
func (s *Store) ListBookings() []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		result = append(result, b.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Snapshot возвращает согласованные копии обеих коллекций для синхронизации
func (s *Store) Snapshot() ([]*domain.Slot, []*domain.Booking) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]*domain.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot.Clone())
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })

	bookings := make([]*domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		bookings = append(bookings, b.Clone())
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })

	return slots, bookings
}

// Load заполняет хранилище из снапшота и восстанавливает счётчики ID.
// Вызывается один раз при старте сервиса до приёма запросов.
func (s *Store) Load(slots []*domain.Slot, bookings []*domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = make(map[int64]*domain.Slot, len(slots))
	s.bookings = make(map[int64]*domain.Booking, len(bookings))
	s.slotSeq, s.bookingSeq, s.messageSeq = 0, 0, 0

	for _, slot := range slots {
		s.slots[slot.ID] = slot.Clone()
		if slot.ID > s.slotSeq {
			s.slotSeq = slot.ID
		}
	}
	for _, b := range bookings {
		s.bookings[b.ID] = b.Clone()
		if b.ID > s.bookingSeq {
			s.bookingSeq = b.ID
		}
		for _, m := range b.Messages {
			if m.ID > s.messageSeq {
				s.messageSeq = m.ID
			}
		}
	}
}
