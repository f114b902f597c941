package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeReservationConfirmed EventType = "RESERVATION_CONFIRMED"
)

// ReservationEvent is published once a booking procedure has committed.
type ReservationEvent struct {
	ID             uuid.UUID `json:"id"`
	Type           EventType `json:"type"`
	ReservationID  string    `json:"reservation_id"`
	TripID         string    `json:"trip_id"`
	UserID         string    `json:"user_id,omitempty"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	PassengerCount int       `json:"passenger_count"`
	SeatCount      int       `json:"seat_count"`
	TotalPaid      float64   `json:"total_paid"`
	PaymentMethod  string    `json:"payment_method"`
	Authenticated  bool      `json:"authenticated"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewReservationConfirmed(reservationID, tripID string) *ReservationEvent {
	return &ReservationEvent{
		ID:            uuid.New(),
		Type:          EventTypeReservationConfirmed,
		ReservationID: reservationID,
		TripID:        tripID,
		CreatedAt:     time.Now(),
	}
}

func (e *ReservationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey keeps every event of a reservation on one partition.
func (e *ReservationEvent) GetPartitionKey() string {
	return e.ReservationID
}
