package entity

import "github.com/google/uuid"

// Passenger belongs to exactly one booking. ScheduleID is denormalized from
// the booking and Active mirrors its CONFIRMED status, so the partial unique
// index on (schedule_id, seat_number) WHERE active can arbitrate seat claims
// without a join. Both are maintained inside the claim/release transactions.
type Passenger struct {
	BaseSimple
	BookingID  uuid.UUID `db:"booking_id"`
	ScheduleID int64     `db:"schedule_id"`
	Name       string    `db:"name"`
	SeatNumber int       `db:"seat_number"`
	Active     bool      `db:"active"`
}
