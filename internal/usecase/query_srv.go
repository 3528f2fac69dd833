package usecase

import (
	"context"
	"time"

	"journey-booking/internal/data/entity"
	"journey-booking/internal/data/repository"
	"journey-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingQueryService serves read-only projections. It never mutates state
// and never reports a passenger belonging to a cancelled booking.
type BookingQueryService interface {
	GetAllBookings(ctx context.Context) ([]response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error)
	GetUpcomingJourneys(ctx context.Context, userID string) ([]response.BookingResponse, error)
	GetPassengersBySchedule(ctx context.Context, scheduleID int64) ([]response.PassengerResponse, error)
}

type bookingQueryService struct {
	repo *repository.Repository
	log  *zap.Logger

	now func() time.Time
}

func NewBookingQueryService(repo *repository.Repository, log *zap.Logger) BookingQueryService {
	return &bookingQueryService{
		repo: repo,
		log:  log.With(zap.String("service", "booking_query")),
		now:  time.Now,
	}
}

func (s *bookingQueryService) GetAllBookings(ctx context.Context) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx)
	if err != nil {
		return nil, storageFailure("list all bookings", err)
	}

	return s.withPassengers(ctx, bookings)
}

func (s *bookingQueryService) GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storageFailure("list user bookings", err)
	}

	return s.withPassengers(ctx, bookings)
}

func (s *bookingQueryService) GetUpcomingJourneys(ctx context.Context, userID string) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindUpcomingByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, storageFailure("list upcoming journeys", err)
	}

	return s.withPassengers(ctx, bookings)
}

func (s *bookingQueryService) GetPassengersBySchedule(ctx context.Context, scheduleID int64) ([]response.PassengerResponse, error) {
	passengers, err := s.repo.Passenger.FindActiveBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, storageFailure("list schedule passengers", err)
	}

	result := make([]response.PassengerResponse, len(passengers))
	for i, p := range passengers {
		result[i] = response.PassengerToResponse(p)
	}

	return result, nil
}

// withPassengers attaches passenger seats to each booking in one query.
func (s *bookingQueryService) withPassengers(ctx context.Context, bookings []*entity.Booking) ([]response.BookingResponse, error) {
	ids := make([]uuid.UUID, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	passengers, err := s.repo.Passenger.FindByBookingIDs(ctx, ids)
	if err != nil {
		return nil, storageFailure("load booking passengers", err)
	}

	result := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = response.BookingToResponse(b, passengers[b.ID])
	}

	return result, nil
}
