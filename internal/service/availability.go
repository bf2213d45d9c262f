// Package service holds the booking, checkout and community logic that sits
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"fmt"

	"github.com/strikeit/strikeit-api/internal/model"
	"github.com/strikeit/strikeit-api/internal/repository"
)

// DefaultSpotDuration is used when a spot query names an hour but no duration.
const DefaultSpotDuration = 2

// DefaultSpotLayout is reported for locations that have neither master
// spots nor bookings: rows A and D hold five spots, B and C hold eight.
var DefaultSpotLayout = buildLayout([]struct {
	row   string
	count int
}{{"A", 5}, {"B", 8}, {"C", 8}, {"D", 5}})

func buildLayout(rows []struct {
	row   string
	count int
}) []string {
	out := make([]string, 0, 26)
	for _, r := range rows {
		for i := 1; i <= r.count; i++ {
			out = append(out, fmt.Sprintf("%s%d", r.row, i))
		}
	}
	return out
}

// occupiesHours reports whether a booking counts toward hourly usage.
func occupiesHours(s model.BookingSlot) bool {
	return s.Status != model.BookingCancelled && s.PaymentStatus != model.PaymentFailed
}

// occupiesSpot reports whether a booking holds its spot.
func occupiesSpot(s model.BookingSlot) bool {
	return s.Status != model.BookingCancelled
}

// overlaps is the half-open interval test [aStart,aEnd) ∩ [bStart,bEnd) ≠ ∅.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// HourlyUsage counts, for each hour in [startHour, endHour), the occupying
// bookings whose [start, start+duration) contains the hour. Index 0 is startHour.
func HourlyUsage(slots []model.BookingSlot, startHour, endHour int) []int {
	if endHour <= startHour {
		return nil
	}
	usage := make([]int, endHour-startHour)
	for _, s := range slots {
		if !occupiesHours(s) {
			continue
		}
		for h := startHour; h < endHour; h++ {
			if h >= s.StartHour && h < s.EndHour() {
				usage[h-startHour]++
			}
		}
	}
	return usage
}

// HourlyAvailability builds the ordered grid for [startHour, endHour).
// With capacity 0 every hour is reported full.
func HourlyAvailability(slots []model.BookingSlot, capacity, startHour, endHour int) []model.HourAvailability {
	usage := HourlyUsage(slots, startHour, endHour)
	out := make([]model.HourAvailability, 0, len(usage))
	for i, used := range usage {
		out = append(out, model.HourAvailability{
			Time:      fmt.Sprintf("%02d:00", startHour+i),
			IsFull:    used >= capacity,
			Remaining: capacity - used,
		})
	}
	return out
}

// KnownSpots merges the master layout with spot numbers seen in bookings,
// keeping first-seen order. Booking data wins over the master layout: a
// spot that only appears in bookings is still reported. When both are
// empty the default layout is returned.
func KnownSpots(master []string, slots []model.BookingSlot) []string {
	seen := make(map[string]struct{}, len(master)+len(slots))
	out := make([]string, 0, len(master)+len(slots))
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, m := range master {
		add(m)
	}
	for _, s := range slots {
		add(s.SpotNumber)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultSpotLayout...)
	}
	return out
}

// SpotBooked reports whether an occupying booking holds spot during
// [hour, hour+duration). A nil hour means "any time that day".
func SpotBooked(spot string, slots []model.BookingSlot, hour *int, duration int) bool {
	for _, s := range slots {
		if s.SpotNumber != spot || !occupiesSpot(s) {
			continue
		}
		if hour == nil {
			return true
		}
		if overlaps(*hour, *hour+duration, s.StartHour, s.EndHour()) {
			return true
		}
	}
	return false
}

// SpotAvailability reports every known spot as booked or available for
// the requested range, in KnownSpots order.
func SpotAvailability(master []string, slots []model.BookingSlot, hour *int, duration int) []model.SpotAvailability {
	if duration <= 0 {
		duration = DefaultSpotDuration
	}
	spots := KnownSpots(master, slots)
	out := make([]model.SpotAvailability, 0, len(spots))
	for _, name := range spots {
		status := model.SpotAvailable
		if SpotBooked(name, slots, hour, duration) {
			status = model.SpotBooked
		}
		out = append(out, model.SpotAvailability{Number: name, Status: status})
	}
	return out
}

// AvailabilityService loads the data the calculators above need.
type AvailabilityService struct {
	locations *repository.LocationRepo
	bookings  *repository.BookingRepo
	openHour  int
	closeHour int
}

// NewAvailabilityService builds the service for the operating window
// [openHour, closeHour).
func NewAvailabilityService(locations *repository.LocationRepo, bookings *repository.BookingRepo, openHour, closeHour int) *AvailabilityService {
	return &AvailabilityService{locations: locations, bookings: bookings, openHour: openHour, closeHour: closeHour}
}

// Hourly returns the hourly grid for a location on a date (YYYY-MM-DD).
func (s *AvailabilityService) Hourly(ctx context.Context, locationID uint64, date string) ([]model.HourAvailability, error) {
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return nil, err
	}
	master, err := s.locations.SpotNames(ctx, s.locations.DB(), locationID)
	if err != nil {
		return nil, fmt.Errorf("load spots: %w", err)
	}
	slots, err := s.bookings.SlotsByLocationDate(ctx, s.bookings.DB(), locationID, date, false)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return HourlyAvailability(slots, len(master), s.openHour, s.closeHour), nil
}

// Spots returns per-spot availability. hour may be nil; duration <= 0 means
// DefaultSpotDuration.
func (s *AvailabilityService) Spots(ctx context.Context, locationID uint64, date string, hour *int, duration int) ([]model.SpotAvailability, error) {
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return nil, err
	}
	master, err := s.locations.SpotNames(ctx, s.locations.DB(), locationID)
	if err != nil {
		return nil, fmt.Errorf("load spots: %w", err)
	}
	slots, err := s.bookings.SlotsByLocationDate(ctx, s.bookings.DB(), locationID, date, false)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return SpotAvailability(master, slots, hour, duration), nil
}
