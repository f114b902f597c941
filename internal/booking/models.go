package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrRejected      = errors.New("booking rejected by backend")
	ErrNoPassengers  = errors.New("at least one passenger is required")
	ErrInvalidTripID = errors.New("trip id is required")
)

// Passenger is the exact shape the booking procedures accept.
type Passenger struct {
	DocumentNumber string `json:"documentNumber" validate:"required,alphanum,max=20"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	BirthDate      string `json:"birthDate" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	SeatID         int64  `json:"seatId" validate:"required,gt=0"`
}

var validate = validator.New()

// ValidatePassengers checks every passenger before any network call.
func ValidatePassengers(passengers []Passenger) error {
	if len(passengers) == 0 {
		return ErrNoPassengers
	}
	for i, p := range passengers {
		if err := validate.Struct(p); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				fields := make([]string, 0, len(verrs))
				for _, fe := range verrs {
					fields = append(fields, fe.Field())
				}
				return fmt.Errorf("passenger %d: invalid %s", i+1, strings.Join(fields, ", "))
			}
			return fmt.Errorf("passenger %d: %w", i+1, err)
		}
	}
	return nil
}

// Result is what both booking procedures return.
type Result struct {
	ReservationID  string `json:"reservationId" gorm:"column:reservation_id"`
	Message        string `json:"message" gorm:"column:message"`
	PassengerCount int    `json:"passengerCount" gorm:"column:passenger_count"`
	SeatCount      int    `json:"seatCount" gorm:"column:seat_count"`
}

// TicketRow is one passenger line of a reservation's ticket data.
type TicketRow struct {
	ServiceTier    string  `json:"serviceTier" gorm:"column:service_tier"`
	Date           string  `json:"date" gorm:"column:date"`
	DepartureTime  string  `json:"departureTime" gorm:"column:departure_time"`
	Origin         string  `json:"origin" gorm:"column:origin"`
	Destination    string  `json:"destination" gorm:"column:destination"`
	SeatNumber     string  `json:"seatNumber" gorm:"column:seat_number"`
	FirstName      string  `json:"firstName" gorm:"column:first_name"`
	LastName       string  `json:"lastName" gorm:"column:last_name"`
	DocumentNumber string  `json:"documentNumber" gorm:"column:document_number"`
	Price          float64 `json:"price" gorm:"column:price"`
}
