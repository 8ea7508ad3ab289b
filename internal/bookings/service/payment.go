package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/events"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
)

var allowedProofTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// AttachPaymentProof stores the screenshot as the booking's payment proof,
// replacing any earlier one. Guests call this without authentication.
func (s *bookingService) AttachPaymentProof(ctx context.Context, id string, data []byte, mimeType string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.MissingField("bookingId")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	mediaType := normalizeMediaType(mimeType)
	if _, ok := allowedProofTypes[mediaType]; !ok {
		s.cfg.Log.Warn("Rejected payment proof type", "id", id, "content_type", mimeType)
		return nil, apperrors.InvalidInput("unsupported file type").
			WithDetails(map[string]any{"allowed": []string{"image/jpeg", "image/png", "image/webp"}})
	}
	if len(data) == 0 {
		return nil, apperrors.MissingField("screenshot")
	}
	if len(data) > s.cfg.MaxPaymentProofSize {
		s.cfg.Log.Warn("Rejected oversized payment proof", "id", id, "size", len(data), "max_size", s.cfg.MaxPaymentProofSize)
		return nil, apperrors.InvalidInput("file too large").
			WithDetails(map[string]any{"maxBytes": s.cfg.MaxPaymentProofSize, "maxSize": formatSize(s.cfg.MaxPaymentProofSize)})
	}

	uri, err := s.encoder.Encode(ctx, data, mediaType)
	if err != nil {
		s.cfg.Log.Error("Failed to encode payment proof", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to process payment screenshot", err)
	}

	updated, err := s.repo.SetPaymentScreenshot(ctx, booking.ID, uri)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to attach payment proof", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to attach payment screenshot", err)
	}

	s.cfg.Log.Info("Payment proof attached",
		"id", id,
		"booking_code", updated.BookingCode,
		"content_type", mediaType,
		"size", len(data),
		"replaced", booking.PaymentScreenshotURL != "",
	)
	s.publisher.Publish(ctx, events.New(model.EventBookingPaymentProofAttached, updated))
	return updated, nil
}

func normalizeMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" {
		return "image/jpeg"
	}
	return mediaType
}

func formatSize(n int) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}
