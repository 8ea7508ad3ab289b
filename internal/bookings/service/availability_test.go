package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableDates(t *testing.T) {
	june1, june30 := monthBounds(2025, 6)

	tests := []struct {
		name     string
		bookings []*model.Booking
		want     []string
	}{
		{
			name:     "no bookings",
			bookings: nil,
			want:     []string{},
		},
		{
			name:     "checkout day stays free",
			bookings: []*model.Booking{stay(roomID, model.BookingStatusPending, "2025-06-01", "2025-06-05")},
			want:     []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"},
		},
		{
			name: "back to back stays",
			bookings: []*model.Booking{
				stay(roomID, model.BookingStatusConfirmed, "2025-06-10", "2025-06-12"),
				stay(roomID, model.BookingStatusPending, "2025-06-12", "2025-06-13"),
			},
			want: []string{"2025-06-10", "2025-06-11", "2025-06-12"},
		},
		{
			name: "rejected ignored",
			bookings: []*model.Booking{
				stay(roomID, model.BookingStatusRejected, "2025-06-20", "2025-06-25"),
			},
			want: []string{},
		},
		{
			name: "clipped to the month",
			bookings: []*model.Booking{
				stay(roomID, model.BookingStatusConfirmed, "2025-05-29", "2025-06-02"),
				stay(roomID, model.BookingStatusConfirmed, "2025-06-29", "2025-07-04"),
			},
			want: []string{"2025-06-01", "2025-06-29", "2025-06-30"},
		},
		{
			name: "ascending regardless of input order",
			bookings: []*model.Booking{
				stay(roomID, model.BookingStatusConfirmed, "2025-06-15", "2025-06-16"),
				stay(roomID, model.BookingStatusConfirmed, "2025-06-03", "2025-06-04"),
			},
			want: []string{"2025-06-03", "2025-06-15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnavailableDates(tt.bookings, june1, june30))
		})
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year, month int
		last        string
	}{
		{2025, 1, "2025-01-31"},
		{2025, 2, "2025-02-28"},
		{2024, 2, "2024-02-29"},
		{2025, 4, "2025-04-30"},
		{2025, 12, "2025-12-31"},
	}
	for _, tt := range tests {
		first, last := monthBounds(tt.year, time.Month(tt.month))
		assert.Equal(t, 1, first.Day())
		assert.Equal(t, tt.last, last.Format("2006-01-02"))
	}
}

func TestRoomAvailability(t *testing.T) {
	f := newFixture()
	f.bookings.seed(stay(roomID, model.BookingStatusPending, "2025-07-10", "2025-07-15"))
	f.bookings.seed(stay(roomID, model.BookingStatusRejected, "2025-07-20", "2025-07-22"))
	f.bookings.seed(stay(otherRoomID, model.BookingStatusConfirmed, "2025-07-01", "2025-07-05"))

	got, err := f.svc.RoomAvailability(context.Background(), roomID, 2025, 7)
	require.NoError(t, err)
	assert.Equal(t, roomID, got.RoomID)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, 7, got.Month)
	assert.Equal(t, []string{"2025-07-10", "2025-07-11", "2025-07-12", "2025-07-13", "2025-07-14"}, got.UnavailableDates)

	got, err = f.svc.RoomAvailability(context.Background(), roomID, 2025, 8)
	require.NoError(t, err)
	assert.Empty(t, got.UnavailableDates)
	assert.NotNil(t, got.UnavailableDates)
}

func TestRoomAvailability_Errors(t *testing.T) {
	tests := []struct {
		name     string
		roomID   string
		year     int
		month    int
		wantCode string
		wantHTTP int
	}{
		{"missing room", "", 2025, 7, apperrors.CodeMissingField, http.StatusBadRequest},
		{"malformed room", "room-1", 2025, 7, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"unknown room", missingID, 2025, 7, apperrors.CodeNotFound, http.StatusNotFound},
		{"month zero", roomID, 2025, 0, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"month thirteen", roomID, 2025, 13, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"year zero", roomID, 0, 7, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"negative year", roomID, -2025, 7, apperrors.CodeInvalidInput, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.RoomAvailability(context.Background(), tt.roomID, tt.year, tt.month)
			requireAppError(t, err, tt.wantCode, tt.wantHTTP)
		})
	}
}
