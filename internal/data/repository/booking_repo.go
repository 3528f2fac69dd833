package repository

import (
	"context"
	"fmt"
	"time"

	"journey-booking/internal/data/entity"
	"journey-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	CreateTx(ctx context.Context, q database.Querier, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)
	FindByUserID(ctx context.Context, userID string) ([]*entity.Booking, error)
	FindUpcomingByUserID(ctx context.Context, userID string, now time.Time) ([]*entity.Booking, error)

	// MarkCancelledTx flips confirmed→cancelled. Returns false when the row
	// was not in confirmed state (already cancelled, or missing).
	MarkCancelledTx(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) (bool, error)
	HasConfirmedBySchedule(ctx context.Context, scheduleID int64) (bool, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, schedule_id, journey_date, total_seats, status, cancelled_at, created_at, updated_at`

func (r *bookingRepository) CreateTx(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, schedule_id, journey_date, total_seats, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ScheduleID,
		booking.JourneyDate,
		booking.TotalSeats,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ScheduleID,
		&booking.JourneyDate,
		&booking.TotalSeats,
		&booking.Status,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all bookings", zap.Error(err))
		return nil, fmt.Errorf("find all bookings: %w", err)
	}

	return r.collectBookings(rows)
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID, err)
	}

	return r.collectBookings(rows)
}

func (r *bookingRepository) FindUpcomingByUserID(ctx context.Context, userID string, now time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status = 'confirmed' AND journey_date >= $2
		ORDER BY journey_date ASC
	`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		r.log.Error("Failed to find upcoming bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("find upcoming bookings for user %s: %w", userID, err)
	}

	return r.collectBookings(rows)
}

func (r *bookingRepository) MarkCancelledTx(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'confirmed'
	`

	result, err := q.Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to mark booking cancelled",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark booking %s cancelled: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) HasConfirmedBySchedule(ctx context.Context, scheduleID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE schedule_id = $1 AND status = 'confirmed')`

	var exists bool
	err := r.db.QueryRow(ctx, query, scheduleID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check confirmed bookings by schedule",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return false, fmt.Errorf("check confirmed bookings for schedule %d: %w", scheduleID, err)
	}

	return exists, nil
}
