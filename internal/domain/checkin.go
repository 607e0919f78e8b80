package domain

import (
	"math"
	"time"
)

// EnsureCheckInWindow accepts unix timestamps within window of the event date, inclusive
func (e *Event) EnsureCheckInWindow(timestamp uint64, window time.Duration) error {
	if timestamp > math.MaxInt64 {
		return ErrCheckInWindow
	}
	ts := int64(timestamp)
	date := e.EventDate.Unix()
	w := int64(window / time.Second)
	if ts < date-w || ts > date+w {
		return ErrCheckInWindow
	}
	return nil
}

// RecordCheckIn stores an attested check-in once per holder
func (s *EventState) RecordCheckIn(r *CheckInRecord) error {
	if _, ok := s.CheckIns[r.Holder]; ok {
		return ErrAlreadyCheckedIn
	}
	if len(s.HoldingsOf(r.Holder)) == 0 {
		return ErrNoTicketsHeld
	}
	s.CheckIns[r.Holder] = r
	return nil
}
