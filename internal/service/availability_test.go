package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikeit/strikeit-api/internal/model"
)

func slot(spot string, start, dur int, status, payment string) model.BookingSlot {
	return model.BookingSlot{SpotNumber: spot, StartHour: start, Duration: dur, Status: status, PaymentStatus: payment}
}

func intPtr(v int) *int { return &v }

func TestSpotBooked_HalfOpenOverlap(t *testing.T) {
	slots := []model.BookingSlot{slot("A1", 10, 2, model.BookingConfirmed, model.PaymentPaid)}

	tests := []struct {
		name     string
		hour     *int
		duration int
		want     bool
	}{
		{"inside", intPtr(11), 1, true},
		{"touching end", intPtr(12), 1, false},
		{"touching start", intPtr(9), 1, false},
		{"straddling start", intPtr(9), 2, true},
		{"covering", intPtr(8), 6, true},
		{"any time that day", nil, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpotBooked("A1", slots, tt.hour, tt.duration))
		})
	}
}

func TestSpotBooked_StatusRules(t *testing.T) {
	cancelled := []model.BookingSlot{slot("A1", 10, 2, model.BookingCancelled, model.PaymentUnpaid)}
	assert.False(t, SpotBooked("A1", cancelled, intPtr(10), 1))
	assert.False(t, SpotBooked("A1", cancelled, nil, 1))

	// a failed payment still holds the spot until the booking is cancelled
	failed := []model.BookingSlot{slot("A1", 10, 2, model.BookingPending, model.PaymentFailed)}
	assert.True(t, SpotBooked("A1", failed, intPtr(10), 1))

	other := []model.BookingSlot{slot("B1", 10, 2, model.BookingPending, model.PaymentUnpaid)}
	assert.False(t, SpotBooked("A1", other, intPtr(10), 1))
}

func TestKnownSpots(t *testing.T) {
	t.Run("master plus booked extras in first-seen order", func(t *testing.T) {
		got := KnownSpots([]string{"A1", "A2"}, []model.BookingSlot{
			slot("Z9", 9, 1, model.BookingPending, model.PaymentUnpaid),
			slot("A1", 9, 1, model.BookingPending, model.PaymentUnpaid),
		})
		assert.Equal(t, []string{"A1", "A2", "Z9"}, got)
	})

	t.Run("empty falls back to default layout", func(t *testing.T) {
		got := KnownSpots(nil, nil)
		require.Len(t, got, 26)
		assert.Equal(t, "A1", got[0])
		assert.Equal(t, "B1", got[5])
		assert.Equal(t, "C8", got[20])
		assert.Equal(t, "D5", got[25])
	})

	t.Run("default layout is not shared", func(t *testing.T) {
		got := KnownSpots(nil, nil)
		got[0] = "X"
		assert.Equal(t, "A1", DefaultSpotLayout[0])
	})
}

func TestSpotAvailability(t *testing.T) {
	slots := []model.BookingSlot{
		slot("A1", 10, 2, model.BookingConfirmed, model.PaymentPaid),
		slot("A2", 14, 1, model.BookingCancelled, model.PaymentUnpaid),
	}
	got := SpotAvailability([]string{"A1", "A2", "A3"}, slots, intPtr(11), 0)
	assert.Equal(t, []model.SpotAvailability{
		{Number: "A1", Status: model.SpotBooked},
		{Number: "A2", Status: model.SpotAvailable},
		{Number: "A3", Status: model.SpotAvailable},
	}, got)

	got = SpotAvailability([]string{"A1"}, slots, intPtr(12), 1)
	assert.Equal(t, model.SpotAvailable, got[0].Status)
}

func TestHourlyAvailability(t *testing.T) {
	slots := []model.BookingSlot{
		slot("A1", 10, 2, model.BookingConfirmed, model.PaymentPaid),
		slot("A2", 10, 2, model.BookingPending, model.PaymentUnpaid),
		slot("A3", 11, 2, model.BookingCancelled, model.PaymentUnpaid),
		slot("A4", 12, 1, model.BookingPending, model.PaymentFailed),
		slot("A5", 6, 3, model.BookingPending, model.PaymentUnpaid),
	}
	grid := HourlyAvailability(slots, 2, 8, 18)
	require.Len(t, grid, 10)

	byTime := map[string]model.HourAvailability{}
	for _, h := range grid {
		byTime[h.Time] = h
	}
	assert.Equal(t, "08:00", grid[0].Time)
	assert.Equal(t, "17:00", grid[9].Time)

	assert.Equal(t, model.HourAvailability{Time: "08:00", IsFull: false, Remaining: 1}, byTime["08:00"])
	assert.Equal(t, model.HourAvailability{Time: "09:00", IsFull: false, Remaining: 2}, byTime["09:00"])
	assert.Equal(t, model.HourAvailability{Time: "10:00", IsFull: true, Remaining: 0}, byTime["10:00"])
	assert.Equal(t, model.HourAvailability{Time: "11:00", IsFull: true, Remaining: 0}, byTime["11:00"])
	// cancelled and failed-payment bookings are not counted
	assert.Equal(t, model.HourAvailability{Time: "12:00", IsFull: false, Remaining: 2}, byTime["12:00"])
}

func TestHourlyAvailability_ZeroCapacityIsFull(t *testing.T) {
	grid := HourlyAvailability(nil, 0, 8, 10)
	assert.Equal(t, []model.HourAvailability{
		{Time: "08:00", IsFull: true, Remaining: 0},
		{Time: "09:00", IsFull: true, Remaining: 0},
	}, grid)
}

func TestHourlyUsage_EmptyWindow(t *testing.T) {
	assert.Nil(t, HourlyUsage(nil, 18, 8))
}
