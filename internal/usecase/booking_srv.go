package usecase

import (
	"context"
	"fmt"
	"time"

	"journey-booking/internal/data/entity"
	"journey-booking/internal/data/repository"
	"journey-booking/internal/dto/request"
	"journey-booking/internal/dto/response"
	"journey-booking/internal/queue"
	"journey-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is the slice of the queue publisher the service needs.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, event queue.BookingCreatedEvent) error
	PublishBookingCancelled(ctx context.Context, event queue.BookingCancelledEvent) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, userID, role string) (*response.CancellationResponse, error)
	HasActiveBookingsBySchedule(ctx context.Context, scheduleID int64) (bool, error)
}

type bookingService struct {
	repo      *repository.Repository
	ledger    SeatLedger
	publisher EventPublisher
	config    *utils.Config
	log       *zap.Logger

	now func() time.Time
}

func NewBookingService(repo *repository.Repository, ledger SeatLedger, publisher EventPublisher, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		ledger:    ledger,
		publisher: publisher,
		config:    config,
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrValidation)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// Seat numbers must be pairwise distinct within the request
	seen := make(map[int]bool, len(req.Passengers))
	for _, p := range req.Passengers {
		if seen[p.SeatNumber] {
			return nil, fmt.Errorf("%w: duplicate seat number %d in request", ErrValidation, p.SeatNumber)
		}
		seen[p.SeatNumber] = true
	}

	now := s.now()
	if req.JourneyDate.Before(now) {
		return nil, fmt.Errorf("%w: journey date %s has already passed", ErrValidation, req.JourneyDate.Format(time.RFC3339))
	}

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      userID,
		ScheduleID:  req.ScheduleID,
		JourneyDate: req.JourneyDate,
		TotalSeats:  len(req.Passengers),
		Status:      entity.BookingStatusConfirmed,
	}

	passengers := make([]*entity.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = &entity.Passenger{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			BookingID:  booking.ID,
			ScheduleID: req.ScheduleID,
			Name:       p.Name,
			SeatNumber: p.SeatNumber,
			Active:     true,
		}
	}

	// The claim is the commit point: booking and passengers persist together
	// or not at all.
	if err := s.ledger.ClaimSeats(ctx, req.ScheduleID, booking, passengers); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID),
		zap.Int64("schedule_id", req.ScheduleID),
		zap.Int("seat_count", len(passengers)),
	)

	s.publishCreated(ctx, booking, passengers)

	resp := response.BookingToResponse(booking, passengers)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID, role string) (*response.CancellationResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID format %s", ErrValidation, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, storageFailure("load booking", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bookingID)
	}

	if booking.UserID != userID && role != utils.RoleAdmin {
		s.log.Warn("Cancel denied, ownership mismatch",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("%w: booking %s", ErrForbidden, bookingID)
	}

	if booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidState, bookingID, booking.Status)
	}

	now := s.now()
	if booking.JourneyDate.Before(now) {
		return nil, fmt.Errorf("%w: journey on %s already departed", ErrInvalidState, booking.JourneyDate.Format(time.RFC3339))
	}

	released, err := s.ledger.ReleaseSeats(ctx, booking.ScheduleID, booking.ID, now)
	if err != nil {
		return nil, err
	}
	if !released {
		// Lost a race with a concurrent cancel; seats are already free.
		return nil, fmt.Errorf("%w: booking %s is already cancelled", ErrInvalidState, bookingID)
	}

	cutoff := time.Duration(s.config.Booking.RefundCutoffHours) * time.Hour
	refundEligible := now.Before(booking.JourneyDate.Add(-cutoff))

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
		zap.Bool("refund_eligible", refundEligible),
	)

	s.publishCancelled(ctx, booking, now, refundEligible)

	return &response.CancellationResponse{
		BookingID:      booking.ID.String(),
		CancelledAt:    now,
		RefundEligible: refundEligible,
	}, nil
}

func (s *bookingService) HasActiveBookingsBySchedule(ctx context.Context, scheduleID int64) (bool, error) {
	active, err := s.repo.Booking.HasConfirmedBySchedule(ctx, scheduleID)
	if err != nil {
		return false, storageFailure("check active bookings", err)
	}
	return active, nil
}

func (s *bookingService) publishCreated(ctx context.Context, booking *entity.Booking, passengers []*entity.Passenger) {
	if s.publisher == nil {
		return
	}

	seats := make([]int, len(passengers))
	for i, p := range passengers {
		seats[i] = p.SeatNumber
	}

	event := queue.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		UserID:      booking.UserID,
		ScheduleID:  booking.ScheduleID,
		JourneyDate: booking.JourneyDate.Format(time.RFC3339),
		SeatNumbers: seats,
		CreatedAt:   booking.CreatedAt.Format(time.RFC3339),
	}

	// Best-effort; a broker outage never fails the booking
	if err := s.publisher.PublishBookingCreated(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking created event",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *bookingService) publishCancelled(ctx context.Context, booking *entity.Booking, at time.Time, refundEligible bool) {
	if s.publisher == nil {
		return
	}

	passengers, err := s.repo.Passenger.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Failed to load passengers for cancel event", zap.Error(err))
	}
	seats := make([]int, len(passengers))
	for i, p := range passengers {
		seats[i] = p.SeatNumber
	}

	event := queue.BookingCancelledEvent{
		BookingID:      booking.ID.String(),
		UserID:         booking.UserID,
		ScheduleID:     booking.ScheduleID,
		SeatNumbers:    seats,
		RefundEligible: refundEligible,
		CancelledAt:    at.Format(time.RFC3339),
	}

	if err := s.publisher.PublishBookingCancelled(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking cancelled event",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
}
