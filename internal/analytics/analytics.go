// Package analytics computes the booking dashboard summary. Summarize is a
// pure fold over its inputs so it can be fed from any snapshot of the store.
package analytics

import (
	"math"
	"sort"

	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

// UnknownBucket collects bookings whose tour no longer exists.
const UnknownBucket = "Unknown"

// CountEntry is one row of a grouped distribution, sorted by count descending.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RecentBooking is a compact view of a booking for the dashboard feed.
type RecentBooking struct {
	ID        utils.SixID          `json:"id"`
	TourTitle string               `json:"tourTitle"`
	Status    models.BookingStatus `json:"status"`
	CreatedAt string               `json:"createdAt"`
}

// Summary is the full dashboard payload.
type Summary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`

	// TotalRevenue sums tour priceFrom times party size over confirmed
	// bookings only.
	TotalRevenue float64 `json:"totalRevenue"`

	// AvgPeoplePerBooking averages party size over all bookings regardless
	// of status, rounded to one decimal place.
	AvgPeoplePerBooking float64 `json:"avgPeoplePerBooking"`

	ByCountry []CountEntry `json:"byCountry"`
	ByType    []CountEntry `json:"byType"`

	Recent []RecentBooking `json:"recent"`
}

// Summarize folds bookings and tours into a dashboard summary. Bookings for
// deleted tours land in the Unknown bucket and contribute no revenue.
// recentLimit caps the newest-first recent feed.
func Summarize(bookings []models.Booking, tours []models.Tour, recentLimit int) Summary {
	tourByID := make(map[utils.SixID]*models.Tour, len(tours))
	for i := range tours {
		tourByID[tours[i].ID] = &tours[i]
	}

	var s Summary
	s.Total = len(bookings)

	byCountry := make(map[string]int)
	byType := make(map[string]int)
	peopleSum := 0

	for _, b := range bookings {
		switch b.Status {
		case models.BookingStatusPending:
			s.Pending++
		case models.BookingStatusConfirmed:
			s.Confirmed++
		case models.BookingStatusCancelled:
			s.Cancelled++
		}

		people := b.People
		if people < 1 {
			people = 1
		}
		peopleSum += people

		tour := tourByID[b.TourID]
		if tour != nil {
			byCountry[tour.Country]++
			byType[string(tour.Type)]++
			if b.Status == models.BookingStatusConfirmed {
				s.TotalRevenue += tour.PriceFrom * float64(people)
			}
		} else {
			byCountry[UnknownBucket]++
			byType[UnknownBucket]++
		}
	}

	if s.Total > 0 {
		s.AvgPeoplePerBooking = math.Round(float64(peopleSum)/float64(s.Total)*10) / 10
	}

	s.ByCountry = sortedEntries(byCountry)
	s.ByType = sortedEntries(byType)
	s.Recent = recent(bookings, recentLimit)

	return s
}

func sortedEntries(m map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func recent(bookings []models.Booking, limit int) []RecentBooking {
	if limit <= 0 {
		return []RecentBooking{}
	}
	sorted := make([]models.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	result := make([]RecentBooking, 0, len(sorted))
	for _, b := range sorted {
		result = append(result, RecentBooking{
			ID:        b.ID,
			TourTitle: b.TourTitle,
			Status:    b.Status,
			CreatedAt: b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return result
}
