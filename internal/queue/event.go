// Package queue defines message payloads published to the broker when a
// booking changes state. Consumers (notification service, analytics) get
// enough context to act without querying the booking store.
package queue

const (
	QueueBookingCreated   = "booking.created"
	QueueBookingCancelled = "booking.cancelled"
)

type BookingCreatedEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	ScheduleID  int64  `json:"schedule_id"`
	JourneyDate string `json:"journey_date"`
	SeatNumbers []int  `json:"seat_numbers"`
	CreatedAt   string `json:"created_at"`
}

type BookingCancelledEvent struct {
	BookingID      string `json:"booking_id"`
	UserID         string `json:"user_id"`
	ScheduleID     int64  `json:"schedule_id"`
	SeatNumbers    []int  `json:"seat_numbers"`
	RefundEligible bool   `json:"refund_eligible"`
	CancelledAt    string `json:"cancelled_at"`
}
