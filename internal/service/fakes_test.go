package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"gorm.io/gorm"
)

// --- in-memory store shared by the fake repositories ---

type memStore struct {
	mu           sync.Mutex
	now          func() time.Time
	rules        map[string]models.PriceRule
	trips        map[string]models.Trip
	bookings     map[string]models.Booking
	reservations map[string]models.Reservation
	alerts       map[string]models.Alert
	settings     map[string]models.Setting
	tripWrites   int
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:          now,
		rules:        map[string]models.PriceRule{},
		trips:        map[string]models.Trip{},
		bookings:     map[string]models.Booking{},
		reservations: map[string]models.Reservation{},
		alerts:       map[string]models.Alert{},
		settings:     map[string]models.Setting{},
	}
}

func copyTrip(t models.Trip) models.Trip {
	t.Passengers = append(models.Passengers{}, t.Passengers...)
	return t
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyBooking(b models.Booking) models.Booking {
	b.TripID = copyStr(b.TripID)
	b.ConfirmedDate = copyStr(b.ConfirmedDate)
	b.PaymentReference = copyStr(b.PaymentReference)
	return b
}

type snapshot struct {
	rules    map[string]models.PriceRule
	trips    map[string]models.Trip
	bookings map[string]models.Booking
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		rules:    map[string]models.PriceRule{},
		trips:    map[string]models.Trip{},
		bookings: map[string]models.Booking{},
	}
	for k, v := range s.rules {
		snap.rules[k] = v
	}
	for k, v := range s.trips {
		snap.trips[k] = copyTrip(v)
	}
	for k, v := range s.bookings {
		snap.bookings[k] = copyBooking(v)
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = snap.rules
	s.trips = snap.trips
	s.bookings = snap.bookings
}

// fakeTransactor runs transactions one at a time and rolls the store back
// when fn fails, which is what row locks plus a real transaction give us.
type fakeTransactor struct {
	mu    sync.Mutex
	store *memStore
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// --- price rules ---

type fakeRuleRepo struct{ s *memStore }

func (r *fakeRuleRepo) Upsert(_ context.Context, rule *models.PriceRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rules[rule.ID] = *rule
	return nil
}

func (r *fakeRuleRepo) FindByID(_ context.Context, id string) (*models.PriceRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.s.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rule, nil
}

func (r *fakeRuleRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id string) (*models.PriceRule, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRuleRepo) FindAll(_ context.Context) ([]models.PriceRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.PriceRule, 0, len(r.s.rules))
	for _, rule := range r.s.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.rules, id)
	return nil
}

// --- trips ---

type fakeTripRepo struct {
	s *memStore
	// removeErrs are returned, in order, by the next RemovePassengers calls.
	removeErrs []error
}

func sortTrips(trips []models.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.PriceRuleID != b.PriceRuleID {
			return a.PriceRuleID < b.PriceRuleID
		}
		return a.VehicleIndex < b.VehicleIndex
	})
}

func (r *fakeTripRepo) FindGroupForUpdate(_ context.Context, _ *gorm.DB, priceRuleID, date string) ([]models.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Trip
	for _, t := range r.s.trips {
		if t.PriceRuleID == priceRuleID && t.Date == date {
			out = append(out, copyTrip(t))
		}
	}
	sortTrips(out)
	return out, nil
}

func (r *fakeTripRepo) Create(_ context.Context, _ *gorm.DB, trip *models.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.trips {
		if t.ID == trip.ID || (t.PriceRuleID == trip.PriceRuleID && t.Date == trip.Date && t.VehicleIndex == trip.VehicleIndex) {
			return gorm.ErrDuplicatedKey
		}
	}
	trip.CreatedAt = r.s.now()
	r.s.trips[trip.ID] = copyTrip(*trip)
	r.s.tripWrites++
	return nil
}

func (r *fakeTripRepo) SaveManifest(_ context.Context, _ *gorm.DB, trip *models.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.trips[trip.ID]
	if !ok {
		return nil
	}
	stored.Passengers = append(models.Passengers{}, trip.Passengers...)
	stored.IsFull = trip.IsFull
	r.s.trips[trip.ID] = stored
	r.s.tripWrites++
	return nil
}

func (r *fakeTripRepo) FindByID(_ context.Context, id string) (*models.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trips[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := copyTrip(t)
	return &c, nil
}

func (r *fakeTripRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id string) (*models.Trip, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTripRepo) Find(_ context.Context, f repository.TripFilter) ([]models.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Trip
	for _, t := range r.s.trips {
		if f.Date != "" && t.Date != f.Date {
			continue
		}
		if f.PriceRuleID != "" && t.PriceRuleID != f.PriceRuleID {
			continue
		}
		if f.IsFull != nil && t.IsFull != *f.IsFull {
			continue
		}
		out = append(out, copyTrip(t))
	}
	sortTrips(out)
	return out, nil
}

func (r *fakeTripRepo) RemovePassengers(_ context.Context, tripIDs []string, bookingIDs map[string]struct{}) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.removeErrs) > 0 {
		err := r.removeErrs[0]
		r.removeErrs = r.removeErrs[1:]
		return 0, err
	}
	n := 0
	for _, id := range tripIDs {
		t, ok := r.s.trips[id]
		if !ok {
			continue
		}
		t = copyTrip(t)
		if t.RemoveBookings(bookingIDs) {
			r.s.trips[id] = t
			r.s.tripWrites++
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.s.trips[id]; ok {
			delete(r.s.trips, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) DeleteBefore(_ context.Context, date string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.trips {
		if t.Date < date {
			delete(r.s.trips, id)
			n++
		}
	}
	return n, nil
}

// --- bookings ---

type fakeBookingRepo struct{ s *memStore }

func (r *fakeBookingRepo) Create(_ context.Context, _ *gorm.DB, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if b.PaymentReference != nil {
		for _, other := range r.s.bookings {
			if other.PaymentReference != nil && *other.PaymentReference == *b.PaymentReference {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.s.now()
	}
	r.s.bookings[b.ID] = copyBooking(*b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := copyBooking(b)
	return &c, nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id string) (*models.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) FindByPaymentReference(_ context.Context, reference string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.PaymentReference != nil && *b.PaymentReference == reference {
			c := copyBooking(b)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBookingRepo) Find(_ context.Context, f repository.BookingFilter) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		if f.Date != "" && b.IntendedDate != f.Date {
			continue
		}
		if f.TripID != "" && (b.TripID == nil || *b.TripID != f.TripID) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBookingRepo) FindUnassigned(_ context.Context, statuses []models.BookingStatus, fromDate string) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.HasTrip() || b.IntendedDate < fromDate {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				out = append(out, copyBooking(b))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBookingRepo) FindIDsCreatedBetween(_ context.Context, from, to *time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, b := range r.s.bookings {
		if from != nil && b.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !b.CreatedAt.Before(*to) {
			continue
		}
		ids = append(ids, b.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeBookingRepo) SetTrip(_ context.Context, _ *gorm.DB, bookingID string, tripID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil
	}
	b.TripID = copyStr(tripID)
	r.s.bookings[bookingID] = b
	return nil
}

func optionalString(v any) *string {
	switch s := v.(type) {
	case string:
		return &s
	case *string:
		return copyStr(s)
	}
	return nil
}

func (r *fakeBookingRepo) Updates(_ context.Context, _ *gorm.DB, bookingID string, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			b.Status = v.(models.BookingStatus)
		case "confirmed_date":
			b.ConfirmedDate = optionalString(v)
		case "trip_id":
			b.TripID = optionalString(v)
		case "intended_date":
			b.IntendedDate = v.(string)
		case "rescheduled_count":
			b.RescheduledCount = v.(int)
		default:
			panic("fakeBookingRepo.Updates: unexpected column " + k)
		}
	}
	r.s.bookings[bookingID] = b
	return nil
}

func (r *fakeBookingRepo) ConfirmPromotable(_ context.Context, _ *gorm.DB, ids []string, promotable []models.BookingStatus, confirmedDate string) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := map[models.BookingStatus]bool{}
	for _, st := range promotable {
		allowed[st] = true
	}
	var out []models.Booking
	for _, id := range ids {
		b, ok := r.s.bookings[id]
		if !ok || !allowed[b.Status] {
			continue
		}
		d := confirmedDate
		b.Status = models.StatusConfirmed
		b.ConfirmedDate = &d
		r.s.bookings[id] = b
		out = append(out, copyBooking(b))
	}
	return out, nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *fakeBookingRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.s.bookings[id]; ok {
			delete(r.s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.s.bookings[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (r *fakeBookingRepo) ClearTripIDs(_ context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if b, ok := r.s.bookings[id]; ok {
			b.TripID = nil
			r.s.bookings[id] = b
			n++
		}
	}
	return n, nil
}

// --- reservations, alerts, settings ---

type fakeReservationRepo struct{ s *memStore }

func (r *fakeReservationRepo) Save(_ context.Context, res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservations[res.Reference] = *res
	return nil
}

func (r *fakeReservationRepo) FindByReference(_ context.Context, reference string) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[reference]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &res, nil
}

func (r *fakeReservationRepo) Delete(_ context.Context, reference string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reservations, reference)
	return nil
}

func (r *fakeReservationRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for ref, res := range r.s.reservations {
		if res.CreatedAt.Before(cutoff) {
			delete(r.s.reservations, ref)
			n++
		}
	}
	return n, nil
}

type fakeAlertRepo struct{ s *memStore }

func (r *fakeAlertRepo) Create(_ context.Context, a *models.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.alerts[a.ID] = *a
	return nil
}

func (r *fakeAlertRepo) FindOpen(_ context.Context, kind models.AlertKind, bookingID string) (*models.Alert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.Kind == kind && a.BookingID == bookingID && !a.Resolved {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAlertRepo) Find(_ context.Context, resolved *bool) ([]models.Alert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Alert
	for _, a := range r.s.alerts {
		if resolved != nil && a.Resolved != *resolved {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeAlertRepo) Resolve(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Resolved = true
	a.ResolvedAt = &at
	r.s.alerts[id] = a
	return nil
}

func (r *fakeAlertRepo) ResolveForBooking(_ context.Context, bookingID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.alerts {
		if a.BookingID == bookingID && !a.Resolved {
			a.Resolved = true
			a.ResolvedAt = &at
			r.s.alerts[id] = a
			n++
		}
	}
	return n, nil
}

type fakeSettingRepo struct{ s *memStore }

func (r *fakeSettingRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settings[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (r *fakeSettingRepo) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[key] = models.Setting{Key: key, Value: value, UpdatedAt: r.s.now()}
	return nil
}

// --- notification sender ---

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []notification.Message
}

func (f *fakeSender) Send(_ context.Context, msg notification.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) kinds(kind notification.Kind) []notification.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Message
	for _, m := range f.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// --- harness wiring the real services over the fakes ---

var testLocation = mustLoadLocation("Africa/Lagos")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type harness struct {
	t        *testing.T
	store    *memStore
	clock    time.Time
	opts     Options
	tx       *fakeTransactor
	rules    *fakeRuleRepo
	trips    *fakeTripRepo
	bookings *fakeBookingRepo
	settings *fakeSettingRepo
	alertsDB *fakeAlertRepo
	sender   *fakeSender

	monitor     *ConfirmationMonitor
	allocator   *Allocator
	sync        *TripSynchronizer
	alerts      *AlertService
	bookingSvc  BookingService
	rescheduler *Rescheduler
}

// newHarness pins "today" to 2024-06-02 in Lagos time.
func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, clock: time.Date(2024, 6, 2, 10, 0, 0, 0, testLocation)}
	h.store = newMemStore(func() time.Time { return h.clock })
	h.opts = Options{
		OpsEmail: "ops@tecotransit.test",
		Location: testLocation,
		Now:      func() time.Time { return h.clock },
	}
	for _, c := range configure {
		c(&h.opts)
	}

	h.tx = &fakeTransactor{store: h.store}
	h.rules = &fakeRuleRepo{s: h.store}
	h.trips = &fakeTripRepo{s: h.store}
	h.bookings = &fakeBookingRepo{s: h.store}
	h.settings = &fakeSettingRepo{s: h.store}
	h.alertsDB = &fakeAlertRepo{s: h.store}
	h.sender = &fakeSender{}

	h.monitor = NewConfirmationMonitor(h.tx, h.trips, h.bookings, h.settings, h.sender, h.opts)
	h.allocator = NewAllocator(h.tx, NewCapacityResolver(h.rules), h.trips, h.bookings, h.monitor)
	h.sync = NewTripSynchronizer(h.trips, h.bookings, h.opts)
	h.alerts = NewAlertService(h.alertsDB, h.sender, h.opts)
	h.bookingSvc = NewBookingService(h.tx, h.bookings, h.trips, h.rules, h.allocator, h.sync, h.alerts, h.sender, h.opts)
	h.rescheduler = NewRescheduler(h.tx, h.trips, h.bookings, h.allocator, h.sync, h.alerts, h.sender, h.opts)
	return h
}

func (h *harness) addRule(pickup, destination, vehicleType string, vehicles, seats int) *models.PriceRule {
	h.t.Helper()
	rule := &models.PriceRule{
		ID:              models.PriceRuleKey(pickup, destination, vehicleType),
		Pickup:          pickup,
		Destination:     destination,
		VehicleType:     vehicleType,
		Price:           12500,
		VehicleCount:    vehicles,
		SeatsPerVehicle: seats,
	}
	if err := h.rules.Upsert(context.Background(), rule); err != nil {
		h.t.Fatalf("add rule: %v", err)
	}
	return rule
}

// addBooking stores a booking without allocating it.
func (h *harness) addBooking(id string, status models.BookingStatus, date string) *models.Booking {
	h.t.Helper()
	b := &models.Booking{
		ID:           id,
		Name:         "Passenger " + id,
		Email:        id + "@example.com",
		Phone:        "0800" + id,
		Pickup:       "ABUAD",
		Destination:  "Lagos",
		VehicleType:  "4-seater",
		IntendedDate: date,
		Status:       status,
	}
	if status == models.StatusPaid {
		ref := "ref-" + id
		b.PaymentReference = &ref
	}
	if err := h.bookings.Create(context.Background(), nil, b); err != nil {
		h.t.Fatalf("add booking: %v", err)
	}
	return b
}

func (h *harness) booking(id string) models.Booking {
	h.t.Helper()
	b, err := h.bookings.FindByID(context.Background(), id)
	if err != nil {
		h.t.Fatalf("booking %s: %v", id, err)
	}
	return *b
}

func (h *harness) allTrips() []models.Trip {
	trips, _ := h.trips.Find(context.Background(), repository.TripFilter{})
	return trips
}

// checkTripInvariants asserts the manifest invariants on every stored trip.
func (h *harness) checkTripInvariants() {
	h.t.Helper()
	for _, trip := range h.allTrips() {
		if len(trip.Passengers) > trip.Capacity {
			h.t.Errorf("trip %s over capacity: %d > %d", trip.ID, len(trip.Passengers), trip.Capacity)
		}
		if trip.IsFull != (len(trip.Passengers) >= trip.Capacity) {
			h.t.Errorf("trip %s isFull=%t with %d/%d passengers", trip.ID, trip.IsFull, len(trip.Passengers), trip.Capacity)
		}
	}
}

func paidInput(ref, date string) CreateBookingInput {
	return CreateBookingInput{
		Name:             "Ada " + ref,
		Email:            "ada+" + ref + "@example.com",
		Phone:            "08012345678",
		Pickup:           "ABUAD",
		Destination:      "Lagos",
		IntendedDate:     date,
		VehicleType:      "4-seater",
		Status:           models.StatusPaid,
		PaymentReference: ref,
		PaymentProvider:  "paystack",
	}
}
