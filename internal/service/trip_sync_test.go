package service

import (
	"context"
	"testing"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) storeTrip(rule *models.PriceRule, date string, index, capacity int, bookingIDs ...string) *models.Trip {
	h.t.Helper()
	trip := models.NewTrip(rule, date, index, capacity)
	for _, id := range bookingIDs {
		trip.AddPassenger(models.Passenger{BookingID: id})
	}
	require.NoError(h.t, h.trips.Create(context.Background(), nil, trip))
	return trip
}

func TestReconcile_RemovesBookingsAndRecomputesFull(t *testing.T) {
	h := newHarness(t)
	rule := h.addRule("ABUAD", "Lagos", "4-seater", 3, 2)
	full := h.storeTrip(rule, "2024-06-05", 1, 2, "a", "b")
	other := h.storeTrip(rule, "2024-06-05", 2, 2, "c")
	untouched := h.storeTrip(rule, "2024-06-06", 1, 2, "d", "e")
	writesBefore := h.store.tripWrites

	n, err := h.sync.Reconcile(context.Background(), []string{"b", "c", "zz"})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, writesBefore+2, h.store.tripWrites, "only affected trips are written")

	got, _ := h.trips.FindByID(context.Background(), full.ID)
	assert.Equal(t, []string{"a"}, got.BookingIDs())
	assert.False(t, got.IsFull)

	got, _ = h.trips.FindByID(context.Background(), other.ID)
	assert.Empty(t, got.Passengers)

	got, _ = h.trips.FindByID(context.Background(), untouched.ID)
	assert.True(t, got.IsFull)
	h.checkTripInvariants()
}

func TestReconcile_NothingToDo(t *testing.T) {
	h := newHarness(t)
	rule := h.addRule("ABUAD", "Lagos", "4-seater", 1, 2)
	h.storeTrip(rule, "2024-06-05", 1, 2, "a")
	writesBefore := h.store.tripWrites

	n, err := h.sync.Reconcile(context.Background(), []string{"zz"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = h.sync.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, writesBefore, h.store.tripWrites)
}

func TestSweepOrphans_RemovesDeletedBookings(t *testing.T) {
	h := newHarness(t)
	rule := h.addRule("ABUAD", "Lagos", "4-seater", 2, 2)
	h.addBooking("a", models.StatusPaid, "2024-06-05")
	h.addBooking("c", models.StatusPaid, "2024-06-05")
	first := h.storeTrip(rule, "2024-06-05", 1, 2, "a", "gone")
	second := h.storeTrip(rule, "2024-06-05", 2, 2, "c")
	writesBefore := h.store.tripWrites

	n, err := h.sync.SweepOrphans(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, writesBefore+1, h.store.tripWrites)
	got, _ := h.trips.FindByID(context.Background(), first.ID)
	assert.Equal(t, []string{"a"}, got.BookingIDs())
	assert.False(t, got.IsFull)
	got, _ = h.trips.FindByID(context.Background(), second.ID)
	assert.Equal(t, []string{"c"}, got.BookingIDs())

	n, err = h.sync.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearAll_DeletesTripsAndClearsReferences(t *testing.T) {
	h := newHarness(t)
	h.addRule("ABUAD", "Lagos", "4-seater", 2, 2)
	ids := h.seatBookings("2024-06-05", 3)
	h.addBooking("loose", models.StatusPending, "2024-06-05")

	res, err := h.sync.ClearAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TripsDeleted)
	assert.Equal(t, int64(3), res.BookingsCleared)
	assert.Empty(t, h.allTrips())
	for _, id := range ids {
		b := h.booking(id)
		assert.False(t, b.HasTrip())
		assert.Equal(t, models.StatusPending, b.Status, "statuses are kept")
	}
}

func TestCleanupPastTrips_KeepsRetentionWindow(t *testing.T) {
	h := newHarness(t)
	rule := h.addRule("ABUAD", "Lagos", "4-seater", 1, 4)
	h.storeTrip(rule, "2024-05-25", 1, 4, "old")
	h.storeTrip(rule, "2024-05-26", 1, 4, "edge")
	h.storeTrip(rule, "2024-06-02", 1, 4, "today")
	h.addBooking("old", models.StatusPaid, "2024-05-25")

	n, err := h.sync.CleanupPastTrips(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	trips := h.allTrips()
	require.Len(t, trips, 2)
	assert.Equal(t, "2024-05-26", trips[0].Date)
	assert.Equal(t, "2024-06-02", trips[1].Date)

	_, err = h.bookingSvc.GetBooking(context.Background(), "old")
	assert.NoError(t, err, "bookings are not touched")
}

func TestCleaner_RunsTripAndReservationRetention(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	rule := f.addRule("ABUAD", "Lagos", "4-seater", 1, 4)
	f.storeTrip(rule, "2024-05-01", 1, 4, "gone")
	f.storeTrip(rule, "2024-06-01", 1, 4, "kept")
	require.NoError(t, f.reservations.Save(ctx, &models.Reservation{Reference: "stale", CreatedAt: f.clock.AddDate(0, 0, -30)}))

	report, err := NewCleaner(f.sync, f.svc).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TripsDeleted)
	assert.Equal(t, int64(1), report.ReservationsPurged)
	assert.Len(t, f.allTrips(), 1)
}
