package repository

import (
	"journey-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking   BookingRepository
	Passenger PassengerRepository
}

func NewRepository(db database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Booking:   NewBookingRepository(db, log),
		Passenger: NewPassengerRepository(db, log),
	}
}
