package reservation

// SessionResponse is a snapshot plus the remaining hold in milliseconds.
type SessionResponse struct {
	Snapshot
	RemainingMs int64 `json:"remainingMs"`
}

func NewSessionResponse(s Snapshot) SessionResponse {
	return SessionResponse{Snapshot: s, RemainingMs: s.Remaining.Milliseconds()}
}

type ConfirmationResponse struct {
	Reservation *SuccessfulReservation `json:"reservation,omitempty"`
	Expired     bool                   `json:"expired"`
}

type RedirectResponse struct {
	Redirect string `json:"redirect"`
}
