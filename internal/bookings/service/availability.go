package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/validator"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
)

func (s *bookingService) RoomAvailability(ctx context.Context, roomID string, year, month int) (*model.RoomAvailability, error) {
	if roomID == "" {
		return nil, apperrors.MissingField("roomId")
	}
	if year <= 0 || year > 9999 {
		return nil, apperrors.InvalidInput("year must be a positive integer")
	}
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidInput("month must be between 1 and 12")
	}

	if _, err := s.roomRepo.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid roomId format")
		}
		return nil, s.referenceError(err, "Room", roomID)
	}

	first, last := monthBounds(year, time.Month(month))
	bookings, err := s.repo.FindTouching(ctx, roomID, first, last)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability", "room_id", roomID, "year", year, "month", month, "error", err)
		return nil, apperrors.Internal("Failed to compute room availability", err)
	}

	return &model.RoomAvailability{
		RoomID:           roomID,
		Year:             year,
		Month:            month,
		UnavailableDates: UnavailableDates(bookings, first, last),
	}, nil
}

// monthBounds returns UTC midnight of the first and last day of the month.
func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// UnavailableDates lists, in ascending order, every day in [first, last] on
// which some booking is in house. A booking occupies [check-in, check-out):
// the checkout day stays free. Rejected bookings never occupy a day.
func UnavailableDates(bookings []*model.Booking, first, last time.Time) []string {
	dates := []string{}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, b := range bookings {
			if b.BookingStatus == model.BookingStatusRejected {
				continue
			}
			if b.Occupies(day) {
				dates = append(dates, day.Format(validator.DateLayout))
				break
			}
		}
	}
	return dates
}
