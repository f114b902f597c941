package reservation

import (
	"time"

	"movitex/internal/session"
)

// Phase arbitrates between the countdown and an in-flight submission.
type Phase string

const (
	PhaseActive     Phase = "active"
	PhaseExpiring   Phase = "expiring"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
)

type LookupState string

const (
	LookupIdle    LookupState = "idle"
	LookupPending LookupState = "pending"
	LookupDone    LookupState = "done"
)

type SubmissionStatus string

const (
	SubmissionIdle      SubmissionStatus = "idle"
	SubmissionInFlight  SubmissionStatus = "inFlight"
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

type Submission struct {
	Status        SubmissionStatus `json:"status"`
	ReservationID string           `json:"reservationId,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// PassengerForm is index-aligned with the selected seats.
type PassengerForm struct {
	SeatNumber     string      `json:"seatNumber"`
	SeatID         int64       `json:"seatId"`
	Price          float64     `json:"price"`
	DocumentNumber string      `json:"documentNumber"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	BirthDate      string      `json:"birthDate"`
	Gender         string      `json:"gender"`
	LookupState    LookupState `json:"lookupState"`
}

func (p PassengerForm) data() session.PassengerData {
	return session.PassengerData{
		SeatNumber:     p.SeatNumber,
		SeatID:         p.SeatID,
		Price:          p.Price,
		DocumentNumber: p.DocumentNumber,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		BirthDate:      p.BirthDate,
		Gender:         p.Gender,
	}
}

type Contact struct {
	Email             string `json:"email"`
	EmailConfirmation string `json:"emailConfirmation"`
	Phone             string `json:"phone"`
}

type Timer struct {
	StartedAt time.Time `json:"startedAt"`
	Deadline  time.Time `json:"deadline"`
}

// SuccessfulReservation is held in memory only, for the confirmation view.
type SuccessfulReservation struct {
	ReservationID  string    `json:"reservationId"`
	Message        string    `json:"message"`
	PassengerCount int       `json:"passengerCount"`
	SeatCount      int       `json:"seatCount"`
	TripID         string    `json:"tripId"`
	TotalPaid      float64   `json:"totalPaid"`
	Authenticated  bool      `json:"authenticated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	Initialized     bool                   `json:"initialized"`
	TripID          string                 `json:"tripId"`
	TripDetails     *session.TripDetails   `json:"tripDetails,omitempty"`
	SelectedSeats   []session.Seat         `json:"selectedSeats"`
	TotalPrice      *float64               `json:"totalPrice,omitempty"`
	Timer           *Timer                 `json:"timer,omitempty"`
	Remaining       time.Duration          `json:"-"`
	Expired         bool                   `json:"expired"`
	Passengers      []PassengerForm        `json:"passengers"`
	Contact         Contact                `json:"contact"`
	PromoCode       string                 `json:"promoCode"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PolicyAccepted  bool                   `json:"policyAccepted"`
	Submission      Submission             `json:"submission"`
	Phase           Phase                  `json:"phase"`
	LastReservation *SuccessfulReservation `json:"lastReservation,omitempty"`
}

// InitOptions drives Initialize. Seats, TripID, TripDetails, TotalPrice and
// Timer describe a new selection; they are ignored on a plain resume.
type InitOptions struct {
	AllowEmpty  bool
	ForceReset  bool
	Seats       []session.Seat
	TripID      string
	TripDetails *session.TripDetails
	TotalPrice  *float64
	Timer       *Timer
}

type ContactPatch struct {
	Email             *string
	EmailConfirmation *string
	Phone             *string
}

type CheckoutPatch struct {
	PromoCode      *string
	PaymentMethod  *string
	PolicyAccepted *bool
}

type PassengerPatch struct {
	FirstName *string
	LastName  *string
	BirthDate *string
	Gender    *string
}

// buildForms derives one form per seat. A seat without a price gets an even
// share of total, which is only an approximation for display.
func buildForms(seats []session.Seat, total *float64) []PassengerForm {
	forms := make([]PassengerForm, len(seats))
	for i, s := range seats {
		price := 0.0
		switch {
		case s.Price != nil:
			price = *s.Price
		case total != nil:
			price = *total / float64(len(seats))
		}
		forms[i] = PassengerForm{
			SeatNumber:  s.SeatNumber,
			SeatID:      s.SeatID,
			Price:       price,
			LookupState: LookupIdle,
		}
	}
	return forms
}
