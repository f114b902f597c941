package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"movitex/internal/booking"
)

var (
	ErrNoTicketData  = errors.New("no ticket data for this reservation")
	ErrTicketBackend = errors.New("ticket backend error")
)

type Service interface {
	GetBoleta(ctx context.Context, reservationID string) (*Boleta, error)
}

type service struct {
	backend booking.Backend
}

func NewService(backend booking.Backend) Service {
	return &service{backend: backend}
}

// GetBoleta distinguishes an empty result (ErrNoTicketData) from a failing
// backend (ErrTicketBackend) so the caller can decide whether to go home.
func (s *service) GetBoleta(ctx context.Context, reservationID string) (*Boleta, error) {
	reservationID = strings.TrimSpace(reservationID)
	if reservationID == "" {
		return nil, ErrNoTicketData
	}

	rows, err := s.backend.TicketData(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTicketBackend, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTicketData
	}

	return aggregate(reservationID, rows), nil
}

func aggregate(reservationID string, rows []booking.TicketRow) *Boleta {
	first := rows[0]
	b := &Boleta{
		ReservationID: reservationID,
		Trip: TripInfo{
			ServiceTier:   first.ServiceTier,
			Date:          first.Date,
			DepartureTime: first.DepartureTime,
			Origin:        first.Origin,
			Destination:   first.Destination,
		},
		Passengers:     make([]PassengerLine, 0, len(rows)),
		PassengerCount: len(rows),
	}

	for _, r := range rows {
		b.Passengers = append(b.Passengers, PassengerLine{
			SeatNumber:     r.SeatNumber,
			FullName:       strings.TrimSpace(r.FirstName + " " + r.LastName),
			DocumentNumber: r.DocumentNumber,
			Price:          r.Price,
		})
		b.TotalPrice += r.Price
	}
	return b
}
