package service

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/validator"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/imageuri"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	propertyID      = "6650f0c2a1b2c3d4e5f60001"
	roomID          = "6650f0c2a1b2c3d4e5f60002"
	otherPropertyID = "6650f0c2a1b2c3d4e5f60003"
	otherRoomID     = "6650f0c2a1b2c3d4e5f60004"
	missingID       = "6650f0c2a1b2c3d4e5f6ffff"
)

// ────────────────────────────────────────────────
// In-memory booking store
// ────────────────────────────────────────────────

type fakeBookingRepo struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	bookings map[string]*model.Booking
	clock    time.Time

	// duplicateCodeFailures makes the next N Create calls fail on the unique code index.
	duplicateCodeFailures int
	// staleStatusUpdate simulates another writer changing the status first.
	staleStatusUpdate bool
	findAllErr        error
	creates           int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: map[string]*model.Booking{},
		clock:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *fakeBookingRepo) seed(b *model.Booking) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(b)
	return b
}

func (r *fakeBookingRepo) insertLocked(b *model.Booking) {
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	r.clock = r.clock.Add(time.Minute)
	b.CreatedAt = r.clock
	b.UpdatedAt = r.clock
	cp := *b
	r.bookings[b.ID] = &cp
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++

	if r.duplicateCodeFailures > 0 {
		r.duplicateCodeFailures--
		return bookingserrors.ErrDuplicateCode
	}
	for _, existing := range r.bookings {
		if existing.BookingCode == b.BookingCode {
			return bookingserrors.ErrDuplicateCode
		}
	}
	r.insertLocked(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindAll(ctx context.Context, f model.BookingFilter) ([]*model.Booking, error) {
	if r.findAllErr != nil {
		return nil, r.findAllErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.Booking{}
	for _, b := range r.bookings {
		if f.PropertyID != "" && b.PropertyID != f.PropertyID {
			continue
		}
		if f.RoomID != "" && b.RoomID != f.RoomID {
			continue
		}
		if f.Status != "" && b.BookingStatus != f.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	if f.Offset > 0 {
		out = out[min(int(f.Offset), len(out)):]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) FindOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	return r.match(func(b *model.Booking) bool {
		return b.RoomID == roomID && b.CheckInDate.Before(to) && b.CheckOutDate.After(from)
	}), nil
}

func (r *fakeBookingRepo) FindTouching(ctx context.Context, roomID string, first, last time.Time) ([]*model.Booking, error) {
	return r.match(func(b *model.Booking) bool {
		return b.RoomID == roomID && !b.CheckInDate.After(last) && !b.CheckOutDate.Before(first)
	}), nil
}

func (r *fakeBookingRepo) match(pred func(*model.Booking) bool) []*model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.BookingStatus != model.BookingStatusRejected && pred(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeBookingRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if r.staleStatusUpdate || b.BookingStatus != from {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.BookingStatus = to
	b.UpdatedAt = b.UpdatedAt.Add(time.Second)
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) SetPaymentScreenshot(ctx context.Context, id string, url string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	b.PaymentScreenshotURL = url
	cp := *b
	return &cp, nil
}

// ExecuteTransaction serializes callbacks, standing in for snapshot isolation.
func (r *fakeBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx)
}

func (r *fakeBookingRepo) all() []*model.Booking {
	return r.match(func(*model.Booking) bool { return true })
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// ────────────────────────────────────────────────
// Lock, property and room fakes
// ────────────────────────────────────────────────

type fakeLockRepo struct {
	mu    sync.Mutex
	locks map[string]*model.BookingLock
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: map[string]*model.BookingLock{}}
}

func (r *fakeLockRepo) Create(ctx context.Context, lock *model.BookingLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locks[lock.ID]; ok {
		return bookingserrors.ErrLockHeld
	}
	cp := *lock
	r.locks[lock.ID] = &cp
	return nil
}

func (r *fakeLockRepo) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[lockID]; ok && l.ExpiresAt.Before(now) {
		delete(r.locks, lockID)
		return true, nil
	}
	return false, nil
}

func (r *fakeLockRepo) Delete(ctx context.Context, lockID, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[lockID]; ok && l.Owner == owner {
		delete(r.locks, lockID)
	}
	return nil
}

func (r *fakeLockRepo) held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

type fakePropertyRepo struct {
	properties map[string]*model.Property
}

func (r *fakePropertyRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	p, ok := r.properties[id]
	if !ok {
		return nil, bookingserrors.ErrPropertyNotFound
	}
	return p, nil
}

func (r *fakePropertyRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Property, error) {
	out := map[string]*model.Property{}
	for _, id := range ids {
		if p, ok := r.properties[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeRoomRepo struct {
	rooms map[string]*model.Room
}

func (r *fakeRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, bookingserrors.ErrRoomNotFound
	}
	return room, nil
}

func (r *fakeRoomRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Room, error) {
	out := map[string]*model.Room{}
	for _, id := range ids {
		if room, ok := r.rooms[id]; ok {
			out[id] = room
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, e *model.BookingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

type fixture struct {
	svc       *bookingService
	bookings  *fakeBookingRepo
	locks     *fakeLockRepo
	publisher *recordingPublisher
}

func testConfig() *config.Config {
	return &config.Config{
		BookingCodePrefix:   "BK",
		BookingCodeLength:   10,
		MaxPaymentProofSize: 5 * 1024 * 1024,
		BookingLockTTL:      10 * time.Second,
		Log:                 logger.Discard(),
	}
}

func newFixture() *fixture {
	cfg := testConfig()
	bookings := newFakeBookingRepo()
	locks := newFakeLockRepo()
	publisher := &recordingPublisher{}

	properties := &fakePropertyRepo{properties: map[string]*model.Property{
		propertyID:      {ID: propertyID, Name: "Lakeview Homestay", Location: "Munnar", UpiID: "lakeview@upi", BankAccountName: "Lakeview Stays"},
		otherPropertyID: {ID: otherPropertyID, Name: "Hilltop Inn", Location: "Ooty"},
	}}
	rooms := &fakeRoomRepo{rooms: map[string]*model.Room{
		roomID:      {ID: roomID, PropertyID: propertyID, RoomNumber: "101", RoomCategory: "Deluxe", Capacity: 2, PricePerNight: 2500},
		otherRoomID: {ID: otherRoomID, PropertyID: otherPropertyID, RoomNumber: "7", RoomCategory: "Standard", Capacity: 3, PricePerNight: 1800},
	}}

	svc := NewBookingService(
		Repositories{Bookings: bookings, Locks: locks, Properties: properties, Rooms: rooms},
		validator.NewBookingValidator(cfg.Log),
		imageuri.NewDataURIEncoder(),
		publisher,
		cfg,
	).(*bookingService)

	return &fixture{svc: svc, bookings: bookings, locks: locks, publisher: publisher}
}

func validRequest(checkIn, checkOut string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		PropertyID:   propertyID,
		RoomID:       roomID,
		GuestName:    "  Asha   Menon ",
		GuestEmail:   "Asha.Menon@Example.com",
		GuestPhone:   "+91 98470 12345",
		GuestAddress: "12 MG Road, Kochi",
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	}
}

func date(s string) time.Time {
	t, err := validator.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// stay builds a stored booking; the property follows the room as in newFixture.
func stay(room string, status model.BookingStatus, checkIn, checkOut string) *model.Booking {
	property := propertyID
	if room == otherRoomID {
		property = otherPropertyID
	}
	return &model.Booking{
		PropertyID:    property,
		RoomID:        room,
		GuestName:     "Existing Guest",
		GuestEmail:    "guest@example.com",
		GuestPhone:    "+919847000000",
		GuestAddress:  "Somewhere",
		CheckInDate:   date(checkIn),
		CheckOutDate:  date(checkOut),
		BookingStatus: status,
		BookingCode:   "BK" + primitive.NewObjectID().Hex()[16:],
	}
}
