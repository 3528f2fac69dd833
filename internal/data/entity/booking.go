package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking links an opaque user to a schedule and a set of passenger seats.
// Status only moves forward: pending→confirmed (or confirmed on creation),
// confirmed→cancelled.
type Booking struct {
	Base
	UserID      string        `db:"user_id"`
	ScheduleID  int64         `db:"schedule_id"`
	JourneyDate time.Time     `db:"journey_date"`
	TotalSeats  int           `db:"total_seats"`
	Status      BookingStatus `db:"status"`
	CancelledAt *time.Time    `db:"cancelled_at"`
}
