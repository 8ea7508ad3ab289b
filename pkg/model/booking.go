package model

import (
	"time"
)

type Booking struct {
	ID                   string        `json:"id,omitempty" bson:"_id,omitempty"`
	BookingCode          string        `json:"bookingCode" bson:"booking_code"`
	PropertyID           string        `json:"propertyId" bson:"property_id"`
	RoomID               string        `json:"roomId" bson:"room_id"`
	GuestName            string        `json:"guestName" bson:"guest_name"`
	GuestEmail           string        `json:"guestEmail" bson:"guest_email"`
	GuestPhone           string        `json:"guestPhone" bson:"guest_phone"`
	GuestAddress         string        `json:"guestAddress" bson:"guest_address"`
	CheckInDate          time.Time     `json:"checkInDate" bson:"check_in_date"`
	CheckOutDate         time.Time     `json:"checkOutDate" bson:"check_out_date"`
	Nights               int           `json:"nights" bson:"nights"`
	TotalAmount          float64       `json:"totalAmount" bson:"total_amount"`
	PaymentScreenshotURL string        `json:"paymentScreenshotUrl,omitempty" bson:"payment_screenshot_url,omitempty"`
	BookingStatus        BookingStatus `json:"bookingStatus" bson:"booking_status"`
	CreatedAt            time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time     `json:"updatedAt" bson:"updated_at"`
}

// Occupies reports whether the night starting on day is taken by b.
// Stays are half-open: the checkout day is free.
func (b *Booking) Occupies(day time.Time) bool {
	return !day.Before(b.CheckInDate) && day.Before(b.CheckOutDate)
}

func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn)
}

// CreateBookingRequest carries the raw public booking form. Dates stay strings
// until the service parses them so that a bad date is reported as invalid
// input rather than a JSON decoding failure.
type CreateBookingRequest struct {
	PropertyID   string `json:"propertyId" validate:"required,mongodb"`
	RoomID       string `json:"roomId" validate:"required,mongodb"`
	GuestName    string `json:"guestName" validate:"required,max=200"`
	GuestEmail   string `json:"guestEmail" validate:"required,email,max=254"`
	GuestPhone   string `json:"guestPhone" validate:"required,max=32"`
	GuestAddress string `json:"guestAddress" validate:"required,max=500"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
}

type UpdateBookingStatusRequest struct {
	BookingStatus string `json:"bookingStatus"`
}

type BookingFilter struct {
	PropertyID string
	RoomID     string
	Status     BookingStatus
	Limit      int
	Offset     int64
}

type PropertySummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	UpiID           string `json:"upiId,omitempty"`
	BankAccountName string `json:"bankAccountName,omitempty"`
}

type RoomSummary struct {
	ID            string  `json:"id"`
	RoomNumber    string  `json:"roomNumber"`
	RoomCategory  string  `json:"roomCategory"`
	Capacity      int     `json:"capacity"`
	PricePerNight float64 `json:"pricePerNight"`
}

// BookingView is a booking with its property and room references resolved.
// Property or Room is nil when the referenced record no longer exists.
type BookingView struct {
	*Booking
	Property *PropertySummary `json:"property"`
	Room     *RoomSummary     `json:"room"`
}

type RoomAvailability struct {
	RoomID           string   `json:"roomId"`
	Year             int      `json:"year"`
	Month            int      `json:"month"`
	UnavailableDates []string `json:"unavailableDates"`
}
