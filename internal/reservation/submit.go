package reservation

import (
	"context"
	"fmt"
	"strings"

	"movitex/internal/booking"
	"movitex/internal/notifications"
)

type submitRequest struct {
	epoch         uint64
	tripID        string
	total         float64
	passengers    []booking.Passenger
	contact       Contact
	paymentMethod string
}

// Submit validates the session locally and books it through the
// authenticated or the guest procedure. A second call while one is in
// flight returns ErrSubmissionInFlight without reaching the backend.
func (e *Engine) Submit(ctx context.Context) (*SuccessfulReservation, error) {
	e.mu.Lock()
	e.touchLocked()

	if e.submission.Status == SubmissionInFlight {
		e.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if !e.initialized {
		e.mu.Unlock()
		return nil, ErrNotInitialized
	}
	if e.expired {
		e.mu.Unlock()
		return nil, ErrSessionExpired
	}
	if err := e.validateLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	req := e.submitRequestLocked()
	if err := booking.ValidatePassengers(req.passengers); err != nil {
		e.mu.Unlock()
		return nil, &ValidationError{Field: "passengers", Msg: err.Error()}
	}

	e.submission = Submission{Status: SubmissionInFlight}
	e.phase = PhaseSubmitting
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.SubmitTimeout)
	defer cancel()

	var userID string
	if e.deps.Profiles != nil {
		p, err := e.deps.Profiles.Current(ctx)
		if err != nil {
			return nil, e.finishFailed(ctx, req, fmt.Errorf("failed to resolve user: %w", err))
		}
		if p != nil {
			userID = p.UserID
		}
	}
	authenticated := userID != ""

	if !authenticated {
		var local error
		switch {
		case strings.TrimSpace(req.contact.Email) == "":
			local = ErrEmailRequired
		case strings.TrimSpace(req.contact.Phone) == "":
			local = ErrPhoneRequired
		}
		if local != nil {
			e.abortSubmission(req.epoch)
			return nil, local
		}
	}

	var (
		res *booking.Result
		err error
	)
	if authenticated {
		res, err = e.deps.Backend.CreateAuthenticated(ctx, userID, req.tripID, req.total, req.passengers)
	} else {
		res, err = e.deps.Backend.CreateAnonymous(ctx, req.tripID, req.total, req.passengers,
			strings.TrimSpace(req.contact.Email), strings.TrimSpace(req.contact.Phone))
	}
	if err != nil {
		return nil, e.finishFailed(ctx, req, err)
	}

	success := &SuccessfulReservation{
		ReservationID:  res.ReservationID,
		Message:        res.Message,
		PassengerCount: res.PassengerCount,
		SeatCount:      res.SeatCount,
		TripID:         req.tripID,
		TotalPaid:      req.total,
		Authenticated:  authenticated,
		CreatedAt:      e.cfg.Clock.Now(),
	}
	e.finishSucceeded(ctx, req, success, userID)
	return success, nil
}

func (e *Engine) validateLocked() error {
	if len(e.seats) == 0 || len(e.passengers) == 0 {
		return ErrNoSeats
	}
	if hasDuplicateSeat(e.seats) {
		return ErrDuplicateSeat
	}
	if strings.TrimSpace(e.tripID) == "" {
		return ErrTripRequired
	}
	if e.paymentMethod == "" {
		return ErrPaymentMethodRequired
	}
	if !e.payments[e.paymentMethod] {
		return ErrInvalidPaymentMethod
	}
	if !e.policyAccepted {
		return ErrPolicyNotAccepted
	}

	for i, p := range e.passengers {
		required := []struct {
			field string
			value string
		}{
			{"documentNumber", p.DocumentNumber},
			{"firstName", p.FirstName},
			{"lastName", p.LastName},
			{"birthDate", p.BirthDate},
			{"gender", p.Gender},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				return &ValidationError{Field: fmt.Sprintf("passengers[%d].%s", i, r.field), Msg: "is required"}
			}
		}
		if p.SeatID <= 0 {
			return &ValidationError{Field: fmt.Sprintf("passengers[%d].seatId", i), Msg: "seat is not resolved"}
		}
	}
	return nil
}

func (e *Engine) submitRequestLocked() submitRequest {
	passengers := make([]booking.Passenger, len(e.passengers))
	sum := 0.0
	for i, p := range e.passengers {
		passengers[i] = booking.Passenger{
			DocumentNumber: strings.TrimSpace(p.DocumentNumber),
			FirstName:      strings.TrimSpace(p.FirstName),
			LastName:       strings.TrimSpace(p.LastName),
			BirthDate:      strings.TrimSpace(p.BirthDate),
			Gender:         strings.TrimSpace(p.Gender),
			SeatID:         p.SeatID,
		}
		sum += p.Price
	}

	total := sum
	if e.totalPrice != nil {
		total = *e.totalPrice
	}

	return submitRequest{
		epoch:         e.epoch,
		tripID:        strings.TrimSpace(e.tripID),
		total:         total,
		passengers:    passengers,
		contact:       e.contact,
		paymentMethod: e.paymentMethod,
	}
}

// abortSubmission returns to idle after a local failure on the guest path.
func (e *Engine) abortSubmission(epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	e.submission = Submission{Status: SubmissionIdle}
	fire := e.leaveSubmittingLocked()
	e.mu.Unlock()
	if fire {
		e.notifyExpired(epoch)
	}
}

// leaveSubmittingLocked resolves an expiry deferred during the submission.
func (e *Engine) leaveSubmittingLocked() bool {
	e.phase = PhaseActive
	if !e.expiryDeferred {
		return false
	}
	e.expiryDeferred = false
	e.markExpiredLocked()
	return true
}

func (e *Engine) finishFailed(ctx context.Context, req submitRequest, cause error) error {
	e.log.LogSubmissionFailed(ctx, req.tripID, cause)
	err := &SubmissionError{Err: cause}

	e.mu.Lock()
	if e.epoch != req.epoch {
		e.mu.Unlock()
		return err
	}
	e.submission = Submission{Status: SubmissionFailed, Error: cause.Error()}
	fire := e.leaveSubmittingLocked()
	e.mu.Unlock()

	if fire {
		e.notifyExpired(req.epoch)
	}
	return err
}

// finishSucceeded tears the session down and leaves the engine
// uninitialized. The reservation exists server side, so the hold must not
// come back on a later reload.
func (e *Engine) finishSucceeded(ctx context.Context, req submitRequest, success *SuccessfulReservation, userID string) {
	e.log.LogReservationCreated(ctx, success.ReservationID, req.tripID, len(req.passengers), success.Authenticated)
	ctx = context.WithoutCancel(ctx)

	e.mu.Lock()
	if e.epoch == req.epoch {
		e.teardownLocked()
		if err := e.deps.Store.Clear(ctx); err != nil {
			e.log.WithError(err).Error("failed to clear session after reservation", "reservation_id", success.ReservationID)
		}
		e.success = success
		e.submission = Submission{Status: SubmissionSucceeded, ReservationID: success.ReservationID}
		e.phase = PhaseDone
	}
	e.mu.Unlock()

	if e.deps.Events == nil {
		return
	}
	event := notifications.NewReservationConfirmed(success.ReservationID, req.tripID)
	event.PassengerCount = success.PassengerCount
	event.SeatCount = success.SeatCount
	event.TotalPaid = req.total
	event.PaymentMethod = req.paymentMethod
	event.Authenticated = success.Authenticated
	if success.Authenticated {
		event.UserID = userID
	} else {
		event.ContactEmail = strings.TrimSpace(req.contact.Email)
	}
	if err := e.deps.Events.PublishReservationEvent(ctx, event); err != nil {
		e.log.WithError(err).Warn("failed to publish reservation event", "reservation_id", success.ReservationID)
	}
}
