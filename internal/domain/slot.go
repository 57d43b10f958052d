package domain

import "time"

// Slot represents a trainer-published bookable time window
type Slot struct {
	ID              int64
	TrainerID       int64
	StartTime       time.Time
	DurationMinutes int
	Price           float64
	IsBooked        bool
	BookedByUserID  *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EndTime returns the moment the slot ends
func (s *Slot) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// CanBeDeleted returns true if the slot may be removed by its trainer
func (s *Slot) CanBeDeleted() bool {
	return !s.IsBooked
}

// IsBookable returns true if the slot is free and starts at least
// leadTime after now
func (s *Slot) IsBookable(now time.Time, leadTime time.Duration) bool {
	return !s.IsBooked && s.StartTime.Sub(now) >= leadTime
}

// Book binds the slot to a user
func (s *Slot) Book(userID int64, now time.Time) {
	s.IsBooked = true
	s.BookedByUserID = &userID
	s.UpdatedAt = now
}

// Release frees the slot after cancellation, rejection or expiry
func (s *Slot) Release(now time.Time) {
	s.IsBooked = false
	s.BookedByUserID = nil
	s.UpdatedAt = now
}

// Clone returns a deep copy of the slot
func (s *Slot) Clone() *Slot {
	c := *s
	c.BookedByUserID = clonePtr(s.BookedByUserID)
	return &c
}
