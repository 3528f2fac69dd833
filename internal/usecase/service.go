package usecase

import (
	"journey-booking/internal/data/repository"
	"journey-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Ledger  SeatLedger
	Booking BookingService
	Query   BookingQueryService
}

func NewService(db Store, repo *repository.Repository, publisher EventPublisher, config *utils.Config, log *zap.Logger) *Service {
	ledger := NewSeatLedger(db, repo, log)

	return &Service{
		Ledger:  ledger,
		Booking: NewBookingService(repo, ledger, publisher, config, log),
		Query:   NewBookingQueryService(repo, log),
	}
}
