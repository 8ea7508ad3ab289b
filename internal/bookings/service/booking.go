package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/events"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	"staybook/pkg/auth"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/imageuri"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"

	"github.com/google/uuid"
)

// maxInsertAttempts bounds how often a create is retried after the insert
// loses a booking_code race on the unique index.
const maxInsertAttempts = 3

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.BookingView, error)
	List(ctx context.Context, filter model.BookingFilter) ([]*model.BookingView, error)
	UpdateStatus(ctx context.Context, id string, status string, caller *auth.Identity) (*model.Booking, error)
	AttachPaymentProof(ctx context.Context, id string, data []byte, mimeType string) (*model.Booking, error)
	RoomAvailability(ctx context.Context, roomID string, year, month int) (*model.RoomAvailability, error)
}

type Repositories struct {
	Bookings   repository.BookingRepository
	Locks      repository.BookingLockRepository
	Properties repository.PropertyRepository
	Rooms      repository.RoomRepository
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.BookingLockRepository
	propertyRepo repository.PropertyRepository
	roomRepo     repository.RoomRepository
	validator    *validator.BookingValidator
	codes        *CodeGenerator
	encoder      imageuri.Encoder
	publisher    events.Publisher
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingService(
	repos Repositories,
	validator *validator.BookingValidator,
	encoder imageuri.Encoder,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repos.Bookings,
		lockRepo:     repos.Locks,
		propertyRepo: repos.Properties,
		roomRepo:     repos.Rooms,
		validator:    validator,
		codes:        NewCodeGenerator(cfg.BookingCodePrefix, cfg.BookingCodeLength, repos.Bookings.ExistsByCode),
		encoder:      encoder,
		publisher:    publisher,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	sanitizer.SanitizeBookingRequest(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, s.referenceError(err, "Property", req.PropertyID)
	}
	room, err := s.roomRepo.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, s.referenceError(err, "Room", req.RoomID)
	}
	if room.PropertyID != property.ID {
		s.cfg.Log.Warn("Room does not belong to property", "room_id", room.ID, "property_id", property.ID)
		return nil, apperrors.New(apperrors.CodeInvalidInput, "room does not belong to property", http.StatusBadRequest).
			WithDetails(map[string]any{"roomId": room.ID, "propertyId": property.ID})
	}

	checkIn, err := validator.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid checkInDate: " + err.Error())
	}
	checkOut, err := validator.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid checkOutDate: " + err.Error())
	}
	if !checkIn.Before(checkOut) {
		return nil, apperrors.InvalidInput("checkout must be after checkin")
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	booking := &model.Booking{
		PropertyID:    property.ID,
		RoomID:        room.ID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		GuestAddress:  req.GuestAddress,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Nights:        nights,
		TotalAmount:   float64(nights) * room.PricePerNight,
		BookingStatus: model.BookingStatusPending,
	}

	lockID, owner, err := s.acquireRoomLock(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		// release even if the request was cancelled mid-flight
		if releaseErr := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID, owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	for attempt := 1; ; attempt++ {
		err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			return s.insertIfRoomFree(txCtx, booking)
		})
		if errors.Is(err, bookingserrors.ErrDuplicateCode) && attempt < maxInsertAttempts {
			s.cfg.Log.Warn("Booking code collided on insert, retrying", "booking_code", booking.BookingCode, "attempt", attempt)
			booking.ID = ""
			continue
		}
		break
	}
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_code", booking.BookingCode,
		"property_id", booking.PropertyID,
		"room_id", booking.RoomID,
		"check_in", booking.CheckInDate.Format(validator.DateLayout),
		"check_out", booking.CheckOutDate.Format(validator.DateLayout),
	)
	s.publisher.Publish(ctx, events.New(model.EventBookingCreated, booking))
	return booking, nil
}

// insertIfRoomFree must run inside a transaction: the overlap query and the
// insert have to observe the same snapshot of the room's bookings.
func (s *bookingService) insertIfRoomFree(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindOverlapping(ctx, booking.RoomID, booking.CheckInDate, booking.CheckOutDate)
	if err != nil {
		return apperrors.Internal("Failed to check room availability", err)
	}
	if len(existing) > 0 {
		s.cfg.Log.Info("Booking rejected, dates overlap",
			"room_id", booking.RoomID,
			"conflicting_id", existing[0].ID,
			"conflicting_check_in", existing[0].CheckInDate.Format(validator.DateLayout),
			"conflicting_check_out", existing[0].CheckOutDate.Format(validator.DateLayout),
		)
		return apperrors.Conflict("room already booked for selected dates")
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return apperrors.Internal("Failed to generate booking code", err)
	}
	booking.BookingCode = code

	// ErrDuplicateCode is returned unwrapped so the caller can retry with a new code.
	return s.repo.Create(ctx, booking)
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.MissingField("id")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &model.BookingView{Booking: booking}

	var wg sync.WaitGroup
	var errProperty, errRoom error
	wg.Add(2)

	go func() {
		defer wg.Done()
		property, err := s.propertyRepo.FindByID(ctx, booking.PropertyID)
		switch {
		case err == nil:
			view.Property = property.Summary()
		case errors.Is(err, bookingserrors.ErrPropertyNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		default:
			errProperty = err
		}
	}()

	go func() {
		defer wg.Done()
		room, err := s.roomRepo.FindByID(ctx, booking.RoomID)
		switch {
		case err == nil:
			view.Room = room.Summary()
		case errors.Is(err, bookingserrors.ErrRoomNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		default:
			errRoom = err
		}
	}()

	wg.Wait()
	if err := errors.Join(errProperty, errRoom); err != nil {
		s.cfg.Log.Error("Failed to resolve booking references", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return view, nil
}

func (s *bookingService) List(ctx context.Context, filter model.BookingFilter) ([]*model.BookingView, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	bookings, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	propertyIDs := make([]string, 0, len(bookings))
	roomIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		propertyIDs = append(propertyIDs, b.PropertyID)
		roomIDs = append(roomIDs, b.RoomID)
	}

	var properties map[string]*model.Property
	var rooms map[string]*model.Room
	var errProperties, errRooms error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		properties, errProperties = s.propertyRepo.FindByIDs(ctx, propertyIDs)
	}()

	go func() {
		defer wg.Done()
		rooms, errRooms = s.roomRepo.FindByIDs(ctx, roomIDs)
	}()

	wg.Wait()
	if err := errors.Join(errProperties, errRooms); err != nil {
		s.cfg.Log.Error("Failed to resolve booking references", "count", len(bookings), "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := &model.BookingView{Booking: b}
		if p, ok := properties[b.PropertyID]; ok {
			view.Property = p.Summary()
		}
		if r, ok := rooms[b.RoomID]; ok {
			view.Room = r.Summary()
		}
		views = append(views, view)
	}

	s.cfg.Log.Debug("Bookings listed",
		"property_id", filter.PropertyID,
		"room_id", filter.RoomID,
		"status", filter.Status,
		"count", len(views),
	)
	return views, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, status string, caller *auth.Identity) (*model.Booking, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if id == "" {
		return nil, apperrors.MissingField("id")
	}
	if status == "" {
		return nil, apperrors.MissingField("bookingStatus")
	}
	target, err := model.ParseBookingStatus(status)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid booking status: %s", status)).
			WithDetails(map[string]any{"allowed": []model.BookingStatus{
				model.BookingStatusPending,
				model.BookingStatusConfirmed,
				model.BookingStatusRejected,
			}})
	}

	current, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.BookingStatus == target {
		s.cfg.Log.Info("Booking status unchanged", "id", id, "status", target, "actor_id", caller.UserID)
		return current, nil
	}
	if !current.BookingStatus.CanTransitionTo(target) {
		s.cfg.Log.Warn("Rejected booking status transition",
			"id", id,
			"from", current.BookingStatus,
			"to", target,
			"actor_id", caller.UserID,
		)
		return nil, apperrors.InvalidState(fmt.Sprintf("booking is %s and cannot be changed to %s", current.BookingStatus, target))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.BookingStatus, target)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			s.cfg.Log.Warn("Booking status changed concurrently", "id", id, "expected", current.BookingStatus, "actor_id", caller.UserID)
			return nil, apperrors.InvalidState("booking status was changed by another request")
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"booking_code", updated.BookingCode,
		"from", current.BookingStatus,
		"to", updated.BookingStatus,
		"actor_id", caller.UserID,
		"actor_role", caller.Role,
	)
	s.publisher.Publish(ctx, events.StatusChanged(updated, current.BookingStatus, caller.UserID))
	return updated, nil
}

// --- Helpers ---

func (s *bookingService) validate(req *model.CreateBookingRequest) error {
	err := s.validator.ValidateCreate(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.Internal("Failed to validate booking", err)
	}

	s.cfg.Log.Warn("Booking validation failed", "error", err)
	if missing, ok := validationErrs.First("required"); ok {
		return apperrors.MissingField(missing.Field)
	}

	details := make(map[string]any, len(validationErrs))
	for _, v := range validationErrs {
		details[v.Field] = v.Message
	}
	return apperrors.InvalidInput(validationErrs[0].Message).WithDetails(details)
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) referenceError(err error, resource, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrPropertyNotFound), errors.Is(err, bookingserrors.ErrRoomNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	default:
		s.cfg.Log.Error("Failed to look up booking reference", "resource", resource, "id", id, "error", err)
		return apperrors.Internal(fmt.Sprintf("Failed to retrieve %s", resource), err)
	}
}

// acquireRoomLock takes the per-room advisory lock. A lock left behind by a
// crashed request is reclaimed once it has expired; a live one fails fast.
func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, string, error) {
	lockID := "booking_lock_" + roomID
	owner := uuid.NewString()
	now := s.now().UTC()

	lock := &model.BookingLock{
		ID:        lockID,
		RoomID:    roomID,
		Owner:     owner,
		ExpiresAt: now.Add(s.cfg.BookingLockTTL),
		CreatedAt: now,
	}

	err := s.lockRepo.Create(ctx, lock)
	if errors.Is(err, bookingserrors.ErrLockHeld) {
		reclaimed, reclaimErr := s.lockRepo.DeleteExpired(ctx, lockID, now)
		if reclaimErr != nil {
			s.cfg.Log.Error("Failed to reclaim booking lock", "lock_id", lockID, "error", reclaimErr)
			return "", "", apperrors.Internal("Failed to acquire booking lock", reclaimErr)
		}
		if !reclaimed {
			return "", "", roomBusy(roomID)
		}
		s.cfg.Log.Warn("Reclaimed expired booking lock", "lock_id", lockID)
		err = s.lockRepo.Create(ctx, lock)
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", "", roomBusy(roomID)
		}
	}
	if err != nil {
		s.cfg.Log.Error("Failed to acquire booking lock", "lock_id", lockID, "error", err)
		return "", "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, owner, nil
}

func roomBusy(roomID string) error {
	return apperrors.Conflict("room is currently being booked by another request, please try again").
		WithDetails(map[string]any{"roomId": roomID})
}
