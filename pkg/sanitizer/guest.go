package sanitizer

import "staybook/pkg/model"

// SanitizeBookingRequest normalizes the guest and reference fields of req in place.
func SanitizeBookingRequest(req *model.CreateBookingRequest) {
	req.PropertyID = TrimAndNormalize(req.PropertyID)
	req.RoomID = TrimAndNormalize(req.RoomID)
	req.GuestName = NormalizeName(req.GuestName)
	req.GuestEmail = NormalizeEmail(req.GuestEmail)
	req.GuestPhone = NormalizePhone(req.GuestPhone)
	req.GuestAddress = NormalizeAddress(req.GuestAddress)
	req.CheckInDate = TrimAndNormalize(req.CheckInDate)
	req.CheckOutDate = TrimAndNormalize(req.CheckOutDate)
}
