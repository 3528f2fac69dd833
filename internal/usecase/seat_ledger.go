package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"journey-booking/internal/data/entity"
	"journey-booking/internal/data/repository"
	"journey-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Store is the slice of the database the ledger needs: plain reads plus the
// ability to open transactions. database.PgxIface satisfies it.
type Store interface {
	database.Querier
	Begin(ctx context.Context) (database.Tx, error)
}

// SeatLedger guarantees exclusive seat occupancy per schedule. Claims and
// releases for the same schedule are serialized by a per-schedule mutex and
// committed in a single transaction; the partial unique index on
// (schedule_id, seat_number) backstops deployments with multiple instances.
type SeatLedger interface {
	OccupiedSeats(ctx context.Context, scheduleID int64) ([]int, error)

	// ClaimSeats atomically reserves the passengers' seats and persists the
	// booking with them. On overlap with occupied seats nothing is persisted
	// and ErrSeatConflict is returned.
	ClaimSeats(ctx context.Context, scheduleID int64, booking *entity.Booking, passengers []*entity.Passenger) error

	// ReleaseSeats flips the booking confirmed→cancelled and frees its seats
	// in one transaction. Returns false when the booking was not confirmed
	// anymore; releasing already-freed seats is a no-op.
	ReleaseSeats(ctx context.Context, scheduleID int64, bookingID uuid.UUID, at time.Time) (bool, error)
}

type seatLedger struct {
	db   Store
	repo *repository.Repository
	log  *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSeatLedger(db Store, repo *repository.Repository, log *zap.Logger) SeatLedger {
	return &seatLedger{
		db:    db,
		repo:  repo,
		log:   log.With(zap.String("service", "seat_ledger")),
		locks: make(map[int64]*sync.Mutex),
	}
}

// scheduleLock returns the mutex for a schedule, creating it on first use.
// Locks are never removed; the map grows with the number of live schedules,
// which is bounded.
func (l *seatLedger) scheduleLock(scheduleID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[scheduleID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[scheduleID] = lock
	}
	return lock
}

func (l *seatLedger) OccupiedSeats(ctx context.Context, scheduleID int64) ([]int, error) {
	seats, err := l.repo.Passenger.OccupiedSeats(ctx, l.db, scheduleID)
	if err != nil {
		return nil, storageFailure("read occupied seats", err)
	}
	return seats, nil
}

func (l *seatLedger) ClaimSeats(ctx context.Context, scheduleID int64, booking *entity.Booking, passengers []*entity.Passenger) error {
	lock := l.scheduleLock(scheduleID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return storageFailure("begin claim transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	occupied, err := l.repo.Passenger.OccupiedSeats(ctx, tx, scheduleID)
	if err != nil {
		return storageFailure("read occupied seats", err)
	}

	taken := make(map[int]bool, len(occupied))
	for _, seat := range occupied {
		taken[seat] = true
	}

	var conflicts []int
	for _, p := range passengers {
		if taken[p.SeatNumber] {
			conflicts = append(conflicts, p.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		l.log.Warn("Seat claim rejected",
			zap.Int64("schedule_id", scheduleID),
			zap.Ints("conflicting_seats", conflicts),
		)
		return fmt.Errorf("%w: seats %v on schedule %d", ErrSeatConflict, conflicts, scheduleID)
	}

	if err := l.repo.Booking.CreateTx(ctx, tx, booking); err != nil {
		return storageFailure("persist booking", err)
	}

	if err := l.repo.Passenger.CreateBatchTx(ctx, tx, passengers); err != nil {
		if isUniqueViolation(err) {
			// Another instance committed the same seat between our read and
			// write; the index is the arbiter of record.
			return fmt.Errorf("%w: schedule %d", ErrSeatConflict, scheduleID)
		}
		return storageFailure("persist passengers", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: schedule %d", ErrSeatConflict, scheduleID)
		}
		return storageFailure("commit claim transaction", err)
	}
	committed = true

	l.log.Info("Seats claimed",
		zap.Int64("schedule_id", scheduleID),
		zap.String("booking_id", booking.ID.String()),
		zap.Int("seat_count", len(passengers)),
	)

	return nil
}

func (l *seatLedger) ReleaseSeats(ctx context.Context, scheduleID int64, bookingID uuid.UUID, at time.Time) (bool, error) {
	lock := l.scheduleLock(scheduleID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return false, storageFailure("begin release transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	released, err := l.repo.Booking.MarkCancelledTx(ctx, tx, bookingID, at)
	if err != nil {
		return false, storageFailure("mark booking cancelled", err)
	}
	if !released {
		// Already cancelled (or gone); seats are free, nothing to do.
		return false, nil
	}

	if err := l.repo.Passenger.DeactivateByBookingIDTx(ctx, tx, bookingID); err != nil {
		return false, storageFailure("release seats", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storageFailure("commit release transaction", err)
	}
	committed = true

	l.log.Info("Seats released",
		zap.Int64("schedule_id", scheduleID),
		zap.String("booking_id", bookingID.String()),
	)

	return true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
