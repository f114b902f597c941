package session

import "time"

// TripDetails is a display-only snapshot of the trip being booked.
type TripDetails struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Date          string `json:"date"`
	DepartureTime string `json:"departureTime"`
	ServiceTier   string `json:"serviceTier,omitempty"`
}

// Seat is one selected seat. Price is nil when upstream did not send one.
type Seat struct {
	SeatID     int64    `json:"seatId"`
	SeatNumber string   `json:"seatNumber"`
	Price      *float64 `json:"price,omitempty"`
}

// PassengerData is the persisted part of a passenger form.
type PassengerData struct {
	SeatNumber     string  `json:"seatNumber"`
	SeatID         int64   `json:"seatId"`
	Price          float64 `json:"price"`
	DocumentNumber string  `json:"documentNumber"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	BirthDate      string  `json:"birthDate"`
	Gender         string  `json:"gender"`
}

// Forms holds everything the user typed.
type Forms struct {
	Passengers        []PassengerData `json:"passengers"`
	Email             string          `json:"email"`
	EmailConfirmation string          `json:"emailConfirmation"`
	Phone             string          `json:"phone"`
	PromoCode         string          `json:"promoCode"`
	PaymentMethod     string          `json:"paymentMethod"`
	PolicyAccepted    bool            `json:"policyAccepted"`
}

// Record is the consolidated reservation_session value.
// Timer fields are epoch milliseconds.
type Record struct {
	TripDetails   *TripDetails `json:"tripDetails,omitempty"`
	SelectedSeats []Seat       `json:"selectedSeats"`
	TotalPrice    *float64     `json:"totalPrice,omitempty"`
	TripID        string       `json:"tripId,omitempty"`
	TimerStart    *int64       `json:"timerStart,omitempty"`
	TimerDeadline *int64       `json:"timerDeadline,omitempty"`
	Forms         *Forms       `json:"forms,omitempty"`
}

// HasSession reports whether the record carries a seat selection.
func (r *Record) HasSession() bool {
	return r != nil && len(r.SelectedSeats) > 0
}

// Deadline returns the hold deadline, if any.
func (r *Record) Deadline() (time.Time, bool) {
	if r == nil || r.TimerDeadline == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*r.TimerDeadline), true
}

// StartedAt returns when the hold started, if known.
func (r *Record) StartedAt() (time.Time, bool) {
	if r == nil || r.TimerStart == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*r.TimerStart), true
}

// EpochMillis is a small helper for the timer fields.
func EpochMillis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}
