package usecase

import (
	"context"
	"testing"
	"time"

	"journey-booking/internal/data/entity"
)

func TestGetUserBookingsIncludesPassengers(t *testing.T) {
	_, _, _, booking, query, _ := newTestEnv()
	ctx := context.Background()
	journey := time.Now().Add(72 * time.Hour)

	created, err := booking.CreateBooking(ctx, "user-1", createRequest(10, journey, 3, 4))
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := booking.CreateBooking(ctx, "user-2", createRequest(10, journey, 5)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	bookings, err := query.GetUserBookings(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user bookings failed: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking for user-1, got %d", len(bookings))
	}
	if bookings[0].ID != created.ID {
		t.Fatalf("expected booking %s, got %s", created.ID, bookings[0].ID)
	}
	if len(bookings[0].Passengers) != 2 {
		t.Fatalf("expected 2 passengers, got %d", len(bookings[0].Passengers))
	}
}

func TestGetAllBookingsIncludesEveryUser(t *testing.T) {
	_, _, _, booking, query, _ := newTestEnv()
	ctx := context.Background()
	journey := time.Now().Add(72 * time.Hour)

	if _, err := booking.CreateBooking(ctx, "user-1", createRequest(10, journey, 3)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := booking.CreateBooking(ctx, "user-2", createRequest(11, journey, 3)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	bookings, err := query.GetAllBookings(ctx)
	if err != nil {
		t.Fatalf("get all bookings failed: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
}

func TestGetUpcomingJourneysFiltersAndSorts(t *testing.T) {
	_, _, _, booking, query, _ := newTestEnv()
	ctx := context.Background()

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(96 * time.Hour)

	// Created out of order to exercise the sort
	if _, err := booking.CreateBooking(ctx, "user-1", createRequest(11, later, 3)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := booking.CreateBooking(ctx, "user-1", createRequest(10, soon, 3)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// A cancelled booking never shows as upcoming
	cancelled, err := booking.CreateBooking(ctx, "user-1", createRequest(12, later, 3))
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := booking.CancelBooking(ctx, cancelled.ID, "user-1", "user"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	upcoming, err := query.GetUpcomingJourneys(ctx, "user-1")
	if err != nil {
		t.Fatalf("get upcoming journeys failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming journeys, got %d", len(upcoming))
	}
	if upcoming[0].ScheduleID != 10 || upcoming[1].ScheduleID != 11 {
		t.Fatalf("expected soonest journey first, got schedules %d, %d",
			upcoming[0].ScheduleID, upcoming[1].ScheduleID)
	}
	for _, b := range upcoming {
		if b.Status != entity.BookingStatusConfirmed {
			t.Fatalf("expected only confirmed journeys, got %s", b.Status)
		}
	}
}

func TestGetUpcomingJourneysExcludesPast(t *testing.T) {
	_, _, _, booking, query, _ := newTestEnv()
	ctx := context.Background()
	journey := time.Now().Add(24 * time.Hour)

	if _, err := booking.CreateBooking(ctx, "user-1", createRequest(10, journey, 3)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// Move the query clock past the journey
	query.now = func() time.Time { return journey.Add(time.Hour) }

	upcoming, err := query.GetUpcomingJourneys(ctx, "user-1")
	if err != nil {
		t.Fatalf("get upcoming journeys failed: %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("expected no upcoming journeys after departure, got %d", len(upcoming))
	}
}

func TestGetPassengersByScheduleSkipsCancelled(t *testing.T) {
	_, _, _, booking, query, _ := newTestEnv()
	ctx := context.Background()
	journey := time.Now().Add(72 * time.Hour)

	if _, err := booking.CreateBooking(ctx, "user-1", createRequest(10, journey, 3, 4)); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	cancelled, err := booking.CreateBooking(ctx, "user-2", createRequest(10, journey, 5))
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := booking.CancelBooking(ctx, cancelled.ID, "user-2", "user"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	passengers, err := query.GetPassengersBySchedule(ctx, 10)
	if err != nil {
		t.Fatalf("get schedule passengers failed: %v", err)
	}
	if len(passengers) != 2 {
		t.Fatalf("expected 2 passengers, got %d", len(passengers))
	}
	for _, p := range passengers {
		if p.SeatNumber == 5 {
			t.Fatal("cancelled passenger must not appear in the manifest")
		}
	}
}
