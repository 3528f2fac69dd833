package repository

import (
	"context"
	"fmt"

	"journey-booking/internal/data/entity"
	"journey-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PassengerRepository interface {
	CreateBatchTx(ctx context.Context, q database.Querier, passengers []*entity.Passenger) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Passenger, error)
	FindByBookingIDs(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]*entity.Passenger, error)

	// OccupiedSeats returns seat numbers held by confirmed bookings for the
	// schedule. Runs on whatever Querier it is given, pool or transaction.
	OccupiedSeats(ctx context.Context, q database.Querier, scheduleID int64) ([]int, error)
	DeactivateByBookingIDTx(ctx context.Context, q database.Querier, bookingID uuid.UUID) error
	FindActiveBySchedule(ctx context.Context, scheduleID int64) ([]*entity.Passenger, error)
}

type passengerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPassengerRepository(db database.Querier, log *zap.Logger) PassengerRepository {
	return &passengerRepository{
		db:  db,
		log: log.With(zap.String("repository", "passenger")),
	}
}

func (r *passengerRepository) CreateBatchTx(ctx context.Context, q database.Querier, passengers []*entity.Passenger) error {
	query := `
		INSERT INTO passengers (id, booking_id, schedule_id, name, seat_number, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range passengers {
		_, err := q.Exec(ctx, query,
			p.ID,
			p.BookingID,
			p.ScheduleID,
			p.Name,
			p.SeatNumber,
			p.Active,
			p.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create passenger",
				zap.Error(err),
				zap.String("booking_id", p.BookingID.String()),
				zap.Int("seat_number", p.SeatNumber),
			)
			return fmt.Errorf("create passenger seat %d for booking %s: %w",
				p.SeatNumber, p.BookingID.String(), err)
		}
	}

	return nil
}

func (r *passengerRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Passenger, error) {
	query := `
		SELECT id, booking_id, schedule_id, name, seat_number, active, created_at
		FROM passengers
		WHERE booking_id = $1
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find passengers by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find passengers by booking ID %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var passengers []*entity.Passenger
	for rows.Next() {
		var p entity.Passenger
		err := rows.Scan(&p.ID, &p.BookingID, &p.ScheduleID, &p.Name, &p.SeatNumber, &p.Active, &p.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan passenger row", zap.Error(err))
			return nil, fmt.Errorf("scan passenger row: %w", err)
		}
		passengers = append(passengers, &p)
	}

	return passengers, rows.Err()
}

func (r *passengerRepository) FindByBookingIDs(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]*entity.Passenger, error) {
	result := make(map[uuid.UUID][]*entity.Passenger)
	if len(bookingIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, booking_id, schedule_id, name, seat_number, active, created_at
		FROM passengers
		WHERE booking_id = ANY($1)
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, bookingIDs)
	if err != nil {
		r.log.Error("Failed to find passengers by booking IDs", zap.Error(err))
		return nil, fmt.Errorf("find passengers by booking IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Passenger
		err := rows.Scan(&p.ID, &p.BookingID, &p.ScheduleID, &p.Name, &p.SeatNumber, &p.Active, &p.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan passenger row", zap.Error(err))
			return nil, fmt.Errorf("scan passenger row: %w", err)
		}
		result[p.BookingID] = append(result[p.BookingID], &p)
	}

	return result, rows.Err()
}

func (r *passengerRepository) OccupiedSeats(ctx context.Context, q database.Querier, scheduleID int64) ([]int, error) {
	query := `
		SELECT seat_number
		FROM passengers
		WHERE schedule_id = $1 AND active
		ORDER BY seat_number
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		r.log.Error("Failed to find occupied seats",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("find occupied seats for schedule %d: %w", scheduleID, err)
	}
	defer rows.Close()

	var seats []int
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			r.log.Error("Failed to scan seat number row", zap.Error(err))
			return nil, fmt.Errorf("scan seat number row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *passengerRepository) DeactivateByBookingIDTx(ctx context.Context, q database.Querier, bookingID uuid.UUID) error {
	query := `UPDATE passengers SET active = false WHERE booking_id = $1 AND active`

	_, err := q.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to deactivate passengers",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("deactivate passengers for booking %s: %w", bookingID.String(), err)
	}

	return nil
}

func (r *passengerRepository) FindActiveBySchedule(ctx context.Context, scheduleID int64) ([]*entity.Passenger, error) {
	query := `
		SELECT p.id, p.booking_id, p.schedule_id, p.name, p.seat_number, p.active, p.created_at
		FROM passengers p
		INNER JOIN bookings b ON p.booking_id = b.id
		WHERE p.schedule_id = $1 AND b.status = 'confirmed'
		ORDER BY p.seat_number
	`

	rows, err := r.db.Query(ctx, query, scheduleID)
	if err != nil {
		r.log.Error("Failed to find passengers by schedule",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("find passengers for schedule %d: %w", scheduleID, err)
	}
	defer rows.Close()

	var passengers []*entity.Passenger
	for rows.Next() {
		var p entity.Passenger
		err := rows.Scan(&p.ID, &p.BookingID, &p.ScheduleID, &p.Name, &p.SeatNumber, &p.Active, &p.CreatedAt)
		if err != nil {
			r.log.Error("Failed to scan passenger row", zap.Error(err))
			return nil, fmt.Errorf("scan passenger row: %w", err)
		}
		passengers = append(passengers, &p)
	}

	return passengers, rows.Err()
}
