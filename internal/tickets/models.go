package tickets

// TripInfo is constant across every row of a reservation.
type TripInfo struct {
	ServiceTier   string `json:"serviceTier"`
	Date          string `json:"date"`
	DepartureTime string `json:"departureTime"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
}

type PassengerLine struct {
	SeatNumber     string  `json:"seatNumber"`
	FullName       string  `json:"fullName"`
	DocumentNumber string  `json:"documentNumber"`
	Price          float64 `json:"price"`
}

// Boleta is the read-only summary of a completed reservation.
type Boleta struct {
	ReservationID  string          `json:"reservationId"`
	Trip           TripInfo        `json:"trip"`
	Passengers     []PassengerLine `json:"passengers"`
	PassengerCount int             `json:"passengerCount"`
	TotalPrice     float64         `json:"totalPrice"`
}
