package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Backend is the booking contract exposed by the database procedures.
type Backend interface {
	CreateAuthenticated(ctx context.Context, userID, tripID string, total float64, passengers []Passenger) (*Result, error)
	CreateAnonymous(ctx context.Context, tripID string, total float64, passengers []Passenger, email, phone string) (*Result, error)
	TicketData(ctx context.Context, reservationID string) ([]TicketRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Backend {
	return &repository{db: db}
}

func (r *repository) CreateAuthenticated(ctx context.Context, userID, tripID string, total float64, passengers []Passenger) (*Result, error) {
	payload, err := encodePassengers(tripID, passengers)
	if err != nil {
		return nil, err
	}

	var res Result
	err = r.db.WithContext(ctx).
		Raw("SELECT * FROM create_booking_authenticated(?, ?, ?, ?::jsonb)", userID, tripID, total, payload).
		Scan(&res).Error
	if err != nil {
		return nil, fmt.Errorf("create_booking_authenticated failed: %w", err)
	}
	return checkResult(&res)
}

func (r *repository) CreateAnonymous(ctx context.Context, tripID string, total float64, passengers []Passenger, email, phone string) (*Result, error) {
	payload, err := encodePassengers(tripID, passengers)
	if err != nil {
		return nil, err
	}

	var res Result
	err = r.db.WithContext(ctx).
		Raw("SELECT * FROM create_booking_anonymous(?, ?, ?::jsonb, ?, ?)", tripID, total, payload, email, phone).
		Scan(&res).Error
	if err != nil {
		return nil, fmt.Errorf("create_booking_anonymous failed: %w", err)
	}
	return checkResult(&res)
}

func (r *repository) TicketData(ctx context.Context, reservationID string) ([]TicketRow, error) {
	var rows []TicketRow
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_ticket_data(?)", reservationID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get_ticket_data failed: %w", err)
	}
	return rows, nil
}

func encodePassengers(tripID string, passengers []Passenger) (string, error) {
	if tripID == "" {
		return "", ErrInvalidTripID
	}
	if err := ValidatePassengers(passengers); err != nil {
		return "", err
	}
	data, err := json.Marshal(passengers)
	if err != nil {
		return "", fmt.Errorf("failed to encode passengers: %w", err)
	}
	return string(data), nil
}

// checkResult treats a missing reservation id as a rejection carrying the
// procedure's message.
func checkResult(res *Result) (*Result, error) {
	if res.ReservationID == "" {
		msg := res.Message
		if msg == "" {
			msg = "no reservation id returned"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return res, nil
}
