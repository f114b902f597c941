package reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"movitex/internal/booking"
	"movitex/internal/doclookup"
	"movitex/internal/notifications"
	"movitex/internal/profile"
	"movitex/internal/session"
	"movitex/pkg/logger"
)

// Clock is injectable so tests can move time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// EventPublisher receives reservation events after a successful booking.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, event *notifications.ReservationEvent) error
}

// Deps are the collaborators of one engine.
type Deps struct {
	Store    session.Store
	Profiles profile.Source
	Lookup   doclookup.Client
	Backend  booking.Backend
	Events   EventPublisher
}

// EngineConfig contains the tunables of an engine
type EngineConfig struct {
	LookupDelay    time.Duration
	LookupTimeout  time.Duration
	TickInterval   time.Duration
	SubmitTimeout  time.Duration
	PaymentMethods []string
	Clock          Clock

	// OnExpired runs outside the engine lock once the hold runs out. epoch
	// identifies the session that expired; a later reset changes it.
	OnExpired func(e *Engine, epoch uint64)
}

// DefaultEngineConfig returns default engine configuration
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		LookupDelay:    1500 * time.Millisecond,
		LookupTimeout:  5 * time.Second,
		TickInterval:   time.Second,
		SubmitTimeout:  20 * time.Second,
		PaymentMethods: []string{"card", "yape", "plin"},
		Clock:          systemClock{},
	}
}

// Engine owns the reservation session of a single browser tab. Every
// exported method is atomic with respect to Snapshot.
type Engine struct {
	mu sync.Mutex

	tabID    string
	deps     Deps
	cfg      *EngineConfig
	payments map[string]bool
	log      *logger.Logger

	// epoch changes on every reset and clear; async work started under an
	// older epoch is discarded.
	epoch uint64

	initialized    bool
	tripID         string
	tripDetails    *session.TripDetails
	seats          []session.Seat
	totalPrice     *float64
	timer          *Timer
	passengers     []PassengerForm
	contact        Contact
	promoCode      string
	paymentMethod  string
	policyAccepted bool

	countdown *Countdown
	clockGen  uint64
	expired   bool

	phase          Phase
	expiryDeferred bool
	submission     Submission

	// success outlives teardown; it backs the confirmation view only.
	success *SuccessfulReservation

	slots        map[int]*lookupSlot
	lastActivity time.Time
}

func NewEngine(tabID string, deps Deps, cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	payments := make(map[string]bool, len(cfg.PaymentMethods))
	for _, m := range cfg.PaymentMethods {
		payments[m] = true
	}

	e := &Engine{
		tabID:    tabID,
		deps:     deps,
		cfg:      cfg,
		payments: payments,
		log:      logger.GetDefault().WithTabID(tabID),
	}
	e.resetStateLocked()
	e.lastActivity = cfg.Clock.Now()
	return e
}

func (e *Engine) TabID() string { return e.tabID }

// Initialize resumes the persisted session, migrating the legacy layout if
// needed, or performs a hard reset when ForceReset carries new seats.
func (e *Engine) Initialize(ctx context.Context, opts InitOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	if opts.ForceReset && len(opts.Seats) > 0 {
		return e.resetLocked(ctx, opts)
	}
	// An initialized engine without seats is re-checked against storage so
	// an empty session never satisfies a caller that needs one.
	if e.initialized && len(e.seats) > 0 {
		return nil
	}

	rec, err := e.loadLocked(ctx)
	if err != nil {
		return err
	}

	if !rec.HasSession() {
		if len(opts.Seats) > 0 {
			return e.resetLocked(ctx, opts)
		}
		if !opts.AllowEmpty {
			return ErrRedirectHome
		}
		e.initialized = true
		return nil
	}

	e.hydrateLocked(ctx, rec)
	e.initialized = true
	return nil
}

// loadLocked reads the consolidated record, falling back to a one-time
// migration of the legacy keys. Legacy keys are removed only after the
// consolidated record has been written.
func (e *Engine) loadLocked(ctx context.Context) (*session.Record, error) {
	rec, err := e.deps.Store.Load(ctx)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrCorrupt) {
		return nil, err
	}
	if errors.Is(err, session.ErrCorrupt) {
		e.log.WithError(err).Warn("discarding unreadable reservation session")
	}

	legacy, err := e.deps.Store.LoadLegacy(ctx)
	if err != nil {
		return nil, err
	}
	if legacy.Empty() {
		return nil, nil
	}

	migrated, ok := session.MigrateLegacy(legacy)
	if !ok {
		e.log.Warn("legacy reservation session is malformed, treating as empty")
		return nil, nil
	}
	if err := e.deps.Store.Save(ctx, migrated); err != nil {
		return nil, err
	}
	if err := e.deps.Store.DeleteLegacy(ctx); err != nil {
		e.log.WithError(err).Warn("failed to delete legacy reservation keys")
	}
	e.log.Info("migrated legacy reservation session", "trip_id", migrated.TripID)
	return migrated, nil
}

func (e *Engine) hydrateLocked(ctx context.Context, rec *session.Record) {
	e.seats = append([]session.Seat(nil), rec.SelectedSeats...)
	e.totalPrice = rec.TotalPrice
	e.tripID = rec.TripID
	e.tripDetails = rec.TripDetails
	e.passengers = buildForms(e.seats, e.totalPrice)

	if deadline, ok := rec.Deadline(); ok {
		started, _ := rec.StartedAt()
		e.startTimerLocked(&Timer{StartedAt: started, Deadline: deadline})
	}

	if f := rec.Forms; f != nil {
		for i := range e.passengers {
			if i >= len(f.Passengers) {
				break
			}
			stored := f.Passengers[i]
			p := &e.passengers[i]
			p.DocumentNumber = stored.DocumentNumber
			p.FirstName = stored.FirstName
			p.LastName = stored.LastName
			p.BirthDate = stored.BirthDate
			p.Gender = stored.Gender
		}
		e.contact = Contact{Email: f.Email, EmailConfirmation: f.EmailConfirmation, Phone: f.Phone}
		e.promoCode = f.PromoCode
		e.paymentMethod = f.PaymentMethod
		e.policyAccepted = f.PolicyAccepted
	}

	e.backfillLocked(ctx)
}

// backfillLocked fills empty fields from the user profile. Stored values
// always win.
func (e *Engine) backfillLocked(ctx context.Context) {
	if e.deps.Profiles == nil {
		return
	}
	prof, err := e.deps.Profiles.Current(ctx)
	if err != nil {
		e.log.WithError(err).Warn("profile unavailable for autofill")
		return
	}
	if prof == nil {
		return
	}

	if len(e.passengers) > 0 {
		p := &e.passengers[0]
		fillEmpty(&p.DocumentNumber, prof.DocumentNumber)
		fillEmpty(&p.FirstName, prof.FirstName)
		fillEmpty(&p.LastName, prof.LastName)
		fillEmpty(&p.BirthDate, prof.BirthDate)
		fillEmpty(&p.Gender, prof.Gender)
	}
	fillEmpty(&e.contact.Email, prof.Email)
	fillEmpty(&e.contact.Phone, prof.Phone)
}

func hasDuplicateSeat(seats []session.Seat) bool {
	seen := make(map[int64]struct{}, len(seats))
	for _, s := range seats {
		if _, ok := seen[s.SeatID]; ok {
			return true
		}
		seen[s.SeatID] = struct{}{}
	}
	return false
}

func fillEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// resetLocked replaces the whole session. Nothing of the previous session
// survives, in memory or in storage.
func (e *Engine) resetLocked(ctx context.Context, opts InitOptions) error {
	if hasDuplicateSeat(opts.Seats) {
		return ErrDuplicateSeat
	}
	e.teardownLocked()
	if err := e.deps.Store.Clear(ctx); err != nil {
		return err
	}

	e.seats = append([]session.Seat(nil), opts.Seats...)
	e.tripID = opts.TripID
	e.tripDetails = opts.TripDetails
	e.totalPrice = opts.TotalPrice
	e.passengers = buildForms(e.seats, e.totalPrice)
	if opts.Timer != nil {
		e.startTimerLocked(opts.Timer)
	}
	e.backfillLocked(ctx)

	if err := e.deps.Store.Save(ctx, e.recordLocked()); err != nil {
		return err
	}
	e.initialized = true

	var deadline *time.Time
	if e.timer != nil {
		deadline = &e.timer.Deadline
	}
	e.log.LogSessionReset(ctx, e.tripID, len(e.seats), deadline)
	return nil
}

// Clear removes every persisted key and resets all in-memory state.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	e.teardownLocked()
	return e.deps.Store.Clear(ctx)
}

// ClearIfCurrent clears the session only while epoch is still current. It
// reports whether anything was cleared.
func (e *Engine) ClearIfCurrent(ctx context.Context, epoch uint64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch {
		return false, nil
	}
	e.teardownLocked()
	return true, e.deps.Store.Clear(ctx)
}

// Close stops background work without touching storage.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.cancelLookupsLocked()
}

// teardownLocked cancels timers and lookups and zeroes the state.
func (e *Engine) teardownLocked() {
	e.stopTimerLocked()
	e.cancelLookupsLocked()
	e.epoch++
	e.resetStateLocked()
}

func (e *Engine) resetStateLocked() {
	e.initialized = false
	e.tripID = ""
	e.tripDetails = nil
	e.seats = nil
	e.totalPrice = nil
	e.timer = nil
	e.passengers = nil
	e.contact = Contact{}
	e.promoCode = ""
	e.paymentMethod = ""
	e.policyAccepted = false
	e.countdown = nil
	e.expired = false
	e.phase = PhaseActive
	e.expiryDeferred = false
	e.submission = Submission{Status: SubmissionIdle}
	e.slots = make(map[int]*lookupSlot)
}

// recordLocked renders the full consolidated record.
func (e *Engine) recordLocked() *session.Record {
	rec := &session.Record{
		TripDetails:   e.tripDetails,
		SelectedSeats: e.seats,
		TotalPrice:    e.totalPrice,
		TripID:        e.tripID,
		Forms:         e.formsLocked(),
	}
	if e.timer != nil {
		if !e.timer.StartedAt.IsZero() {
			rec.TimerStart = session.EpochMillis(e.timer.StartedAt)
		}
		rec.TimerDeadline = session.EpochMillis(e.timer.Deadline)
	}
	return rec
}

func (e *Engine) formsLocked() *session.Forms {
	passengers := make([]session.PassengerData, len(e.passengers))
	for i, p := range e.passengers {
		passengers[i] = p.data()
	}
	return &session.Forms{
		Passengers:        passengers,
		Email:             e.contact.Email,
		EmailConfirmation: e.contact.EmailConfirmation,
		Phone:             e.contact.Phone,
		PromoCode:         e.promoCode,
		PaymentMethod:     e.paymentMethod,
		PolicyAccepted:    e.policyAccepted,
	}
}

// persistLocked overlays the current forms onto the stored record and only
// fills trip or timer fields that are missing there.
func (e *Engine) persistLocked(ctx context.Context) error {
	if len(e.seats) == 0 || len(e.passengers) == 0 {
		return nil
	}
	current := e.recordLocked()
	return e.deps.Store.Update(ctx, func(rec *session.Record) {
		rec.Forms = current.Forms
		if len(rec.SelectedSeats) == 0 {
			rec.SelectedSeats = current.SelectedSeats
		}
		if rec.TripID == "" {
			rec.TripID = current.TripID
		}
		if rec.TripDetails == nil {
			rec.TripDetails = current.TripDetails
		}
		if rec.TotalPrice == nil {
			rec.TotalPrice = current.TotalPrice
		}
		if rec.TimerStart == nil {
			rec.TimerStart = current.TimerStart
		}
		if rec.TimerDeadline == nil {
			rec.TimerDeadline = current.TimerDeadline
		}
	})
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Initialized:    e.initialized,
		TripID:         e.tripID,
		SelectedSeats:  append([]session.Seat(nil), e.seats...),
		Remaining:      e.remainingLocked(),
		Expired:        e.expired,
		Passengers:     append([]PassengerForm(nil), e.passengers...),
		Contact:        e.contact,
		PromoCode:      e.promoCode,
		PaymentMethod:  e.paymentMethod,
		PolicyAccepted: e.policyAccepted,
		Submission:     e.submission,
		Phase:          e.phase,
	}
	if e.tripDetails != nil {
		td := *e.tripDetails
		s.TripDetails = &td
	}
	if e.totalPrice != nil {
		tp := *e.totalPrice
		s.TotalPrice = &tp
	}
	if e.timer != nil {
		t := *e.timer
		s.Timer = &t
	}
	if e.success != nil {
		sr := *e.success
		s.LastReservation = &sr
	}
	return s
}

// Expired reports whether the current hold has run out.
func (e *Engine) Expired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expired
}

// IdleSince returns the time of the last caller interaction.
func (e *Engine) IdleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActivity
}

// Busy reports whether a submission is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submission.Status == SubmissionInFlight
}

func (e *Engine) touchLocked() {
	e.lastActivity = e.cfg.Clock.Now()
}
