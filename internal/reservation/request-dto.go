package reservation

import (
	"time"

	"movitex/internal/session"
)

type SeatRequest struct {
	SeatID     int64    `json:"seatId" binding:"required,gt=0"`
	SeatNumber string   `json:"seatNumber" binding:"required"`
	Price      *float64 `json:"price" binding:"omitempty,gte=0"`
}

type TripDetailsRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Date          string `json:"date"`
	DepartureTime string `json:"departureTime"`
	ServiceTier   string `json:"serviceTier"`
}

// TimerRequest carries epoch milliseconds.
type TimerRequest struct {
	StartedAt int64 `json:"startedAt" binding:"omitempty,gt=0"`
	Deadline  int64 `json:"deadline" binding:"required,gt=0"`
}

// BeginSessionRequest starts a new hold. Without an explicit timer,
// StartHold asks the server to start one of the configured duration.
type BeginSessionRequest struct {
	TripID      string              `json:"tripId" binding:"required"`
	TripDetails *TripDetailsRequest `json:"tripDetails"`
	Seats       []SeatRequest       `json:"seats" binding:"required,min=1,unique=SeatID,dive"`
	TotalPrice  *float64            `json:"totalPrice" binding:"omitempty,gte=0"`
	Timer       *TimerRequest       `json:"timer"`
	StartHold   bool                `json:"startHold"`
}

func (r BeginSessionRequest) toOptions(now time.Time, hold time.Duration) InitOptions {
	seats := make([]session.Seat, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = session.Seat{SeatID: s.SeatID, SeatNumber: s.SeatNumber, Price: s.Price}
	}

	opts := InitOptions{
		Seats:      seats,
		TripID:     r.TripID,
		TotalPrice: r.TotalPrice,
	}
	if td := r.TripDetails; td != nil {
		opts.TripDetails = &session.TripDetails{
			Origin:        td.Origin,
			Destination:   td.Destination,
			Date:          td.Date,
			DepartureTime: td.DepartureTime,
			ServiceTier:   td.ServiceTier,
		}
	}

	switch {
	case r.Timer != nil:
		t := &Timer{Deadline: time.UnixMilli(r.Timer.Deadline)}
		if r.Timer.StartedAt > 0 {
			t.StartedAt = time.UnixMilli(r.Timer.StartedAt)
		}
		opts.Timer = t
	case r.StartHold && hold > 0:
		opts.Timer = &Timer{StartedAt: now, Deadline: now.Add(hold)}
	}
	return opts
}

type ContactRequest struct {
	Email             *string `json:"email" binding:"omitempty,max=254"`
	EmailConfirmation *string `json:"emailConfirmation" binding:"omitempty,max=254"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
}

type CheckoutRequest struct {
	PromoCode      *string `json:"promoCode" binding:"omitempty,max=50"`
	PaymentMethod  *string `json:"paymentMethod" binding:"omitempty,max=30"`
	PolicyAccepted *bool   `json:"policyAccepted"`
}

type PassengerRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	BirthDate *string `json:"birthDate" binding:"omitempty,max=10"`
	Gender    *string `json:"gender" binding:"omitempty,max=10"`
}

type DocumentRequest struct {
	DocumentNumber string `json:"documentNumber" binding:"max=20"`
}
