package session

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Legacy is the raw content of the old fragmented layout. A nil field
// means the key was absent.
type Legacy struct {
	Trip          *string
	TimerStart    *string
	TimerDeadline *string
	Forms         *string
}

// Empty reports whether no legacy key was found at all.
func (l Legacy) Empty() bool {
	return l.Trip == nil && l.TimerStart == nil && l.TimerDeadline == nil && l.Forms == nil
}

type legacyTrip struct {
	TripDetails   *TripDetails `json:"tripDetails"`
	SelectedSeats []Seat       `json:"selectedSeats"`
	TotalPrice    *float64     `json:"totalPrice"`
	TripID        string       `json:"tripId"`
}

// MigrateLegacy converts the fragmented layout into a consolidated record.
// It returns false when there is nothing usable: no trip data, no seats, or
// any present fragment that does not decode.
func MigrateLegacy(l Legacy) (*Record, bool) {
	if l.Trip == nil {
		return nil, false
	}

	var trip legacyTrip
	if err := json.Unmarshal([]byte(*l.Trip), &trip); err != nil {
		return nil, false
	}
	if len(trip.SelectedSeats) == 0 {
		return nil, false
	}

	rec := &Record{
		TripDetails:   trip.TripDetails,
		SelectedSeats: trip.SelectedSeats,
		TotalPrice:    trip.TotalPrice,
		TripID:        trip.TripID,
	}

	if l.TimerStart != nil {
		ms, ok := parseMillis(*l.TimerStart)
		if !ok {
			return nil, false
		}
		rec.TimerStart = &ms
	}
	if l.TimerDeadline != nil {
		ms, ok := parseMillis(*l.TimerDeadline)
		if !ok {
			return nil, false
		}
		rec.TimerDeadline = &ms
	}

	if l.Forms != nil {
		var forms Forms
		if err := json.Unmarshal([]byte(*l.Forms), &forms); err != nil {
			return nil, false
		}
		rec.Forms = &forms
	}

	return rec, true
}

// parseMillis accepts a bare number or a quoted one.
func parseMillis(raw string) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}
