package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"journey-booking/internal/data/entity"
	"journey-booking/internal/data/repository"
	"journey-booking/internal/queue"
	"journey-booking/pkg/database"
	"journey-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// memDB is a synchronized in-memory stand-in for the booking store. The
// fake repositories write through the memTx they are handed, so rollback
// semantics match the real transactional behavior.
type memDB struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*entity.Booking
	passengers map[uuid.UUID]*entity.Passenger

	failNextPassengerInsert bool
}

func newMemDB() *memDB {
	return &memDB{
		bookings:   make(map[uuid.UUID]*entity.Booking),
		passengers: make(map[uuid.UUID]*entity.Passenger),
	}
}

// memStore implements Store over memDB.
type memStore struct {
	db *memDB
}

func (s *memStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not used by fakes")
}

func (s *memStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not used by fakes")
}

func (s *memStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("not used by fakes")
}

func (s *memStore) Begin(ctx context.Context) (database.Tx, error) {
	return &memTx{db: s.db}, nil
}

// memTx journals undo operations; Rollback reverses them.
type memTx struct {
	db   *memDB
	undo []func()
}

func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not used by fakes")
}

func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not used by fakes")
}

func (t *memTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("not used by fakes")
}

func (t *memTx) Commit(ctx context.Context) error {
	t.undo = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

func asMemTx(q database.Querier) *memTx {
	tx, ok := q.(*memTx)
	if !ok {
		panic("fake repository called outside a memTx")
	}
	return tx
}

type fakeBookingRepo struct {
	db *memDB
}

func (r *fakeBookingRepo) CreateTx(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	tx := asMemTx(q)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	copied := *booking
	r.db.bookings[booking.ID] = &copied
	id := booking.ID
	tx.undo = append(tx.undo, func() {
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		delete(r.db.bookings, id)
	})
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	booking, ok := r.db.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result []*entity.Booking
	for _, b := range r.db.bookings {
		copied := *b
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID string) ([]*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result []*entity.Booking
	for _, b := range r.db.bookings {
		if b.UserID == userID {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeBookingRepo) FindUpcomingByUserID(ctx context.Context, userID string, now time.Time) ([]*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result []*entity.Booking
	for _, b := range r.db.bookings {
		if b.UserID == userID && b.Status == entity.BookingStatusConfirmed && !b.JourneyDate.Before(now) {
			copied := *b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JourneyDate.Before(result[j].JourneyDate)
	})
	return result, nil
}

func (r *fakeBookingRepo) MarkCancelledTx(ctx context.Context, q database.Querier, id uuid.UUID, at time.Time) (bool, error) {
	tx := asMemTx(q)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	booking, ok := r.db.bookings[id]
	if !ok || booking.Status != entity.BookingStatusConfirmed {
		return false, nil
	}

	prev := *booking
	booking.Status = entity.BookingStatusCancelled
	cancelled := at
	booking.CancelledAt = &cancelled
	booking.UpdatedAt = at
	tx.undo = append(tx.undo, func() {
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		restored := prev
		r.db.bookings[id] = &restored
	})
	return true, nil
}

func (r *fakeBookingRepo) HasConfirmedBySchedule(ctx context.Context, scheduleID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, b := range r.db.bookings {
		if b.ScheduleID == scheduleID && b.Status == entity.BookingStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

type fakePassengerRepo struct {
	db *memDB
}

func (r *fakePassengerRepo) CreateBatchTx(ctx context.Context, q database.Querier, passengers []*entity.Passenger) error {
	tx := asMemTx(q)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failNextPassengerInsert {
		r.db.failNextPassengerInsert = false
		return errors.New("simulated insert failure")
	}

	for _, p := range passengers {
		copied := *p
		r.db.passengers[p.ID] = &copied
		id := p.ID
		tx.undo = append(tx.undo, func() {
			r.db.mu.Lock()
			defer r.db.mu.Unlock()
			delete(r.db.passengers, id)
		})
	}
	return nil
}

func (r *fakePassengerRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Passenger, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result []*entity.Passenger
	for _, p := range r.db.passengers {
		if p.BookingID == bookingID {
			copied := *p
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeatNumber < result[j].SeatNumber })
	return result, nil
}

func (r *fakePassengerRepo) FindByBookingIDs(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]*entity.Passenger, error) {
	result := make(map[uuid.UUID][]*entity.Passenger)
	for _, id := range bookingIDs {
		passengers, err := r.FindByBookingID(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = passengers
	}
	return result, nil
}

func (r *fakePassengerRepo) OccupiedSeats(ctx context.Context, q database.Querier, scheduleID int64) ([]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var seats []int
	for _, p := range r.db.passengers {
		if p.ScheduleID == scheduleID && p.Active {
			seats = append(seats, p.SeatNumber)
		}
	}
	sort.Ints(seats)
	return seats, nil
}

func (r *fakePassengerRepo) DeactivateByBookingIDTx(ctx context.Context, q database.Querier, bookingID uuid.UUID) error {
	tx := asMemTx(q)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, p := range r.db.passengers {
		if p.BookingID == bookingID && p.Active {
			p.Active = false
			restore := p
			tx.undo = append(tx.undo, func() {
				r.db.mu.Lock()
				defer r.db.mu.Unlock()
				restore.Active = true
			})
		}
	}
	return nil
}

func (r *fakePassengerRepo) FindActiveBySchedule(ctx context.Context, scheduleID int64) ([]*entity.Passenger, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var result []*entity.Passenger
	for _, p := range r.db.passengers {
		if p.ScheduleID != scheduleID || !p.Active {
			continue
		}
		booking, ok := r.db.bookings[p.BookingID]
		if !ok || booking.Status != entity.BookingStatusConfirmed {
			continue
		}
		copied := *p
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SeatNumber < result[j].SeatNumber })
	return result, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	created   []queue.BookingCreatedEvent
	cancelled []queue.BookingCancelledEvent
}

func (p *fakePublisher) PublishBookingCreated(ctx context.Context, event queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) PublishBookingCancelled(ctx context.Context, event queue.BookingCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, event)
	return nil
}

// newTestEnv wires the in-memory store into the real ledger and services.
func newTestEnv() (*memDB, *repository.Repository, SeatLedger, *bookingService, *bookingQueryService, *fakePublisher) {
	db := newMemDB()
	repo := &repository.Repository{
		Booking:   &fakeBookingRepo{db: db},
		Passenger: &fakePassengerRepo{db: db},
	}

	log := zap.NewNop()
	ledger := NewSeatLedger(&memStore{db: db}, repo, log)

	config := &utils.Config{}
	config.Booking.RefundCutoffHours = 24

	publisher := &fakePublisher{}
	booking := NewBookingService(repo, ledger, publisher, config, log).(*bookingService)
	query := NewBookingQueryService(repo, log).(*bookingQueryService)

	return db, repo, ledger, booking, query, publisher
}
