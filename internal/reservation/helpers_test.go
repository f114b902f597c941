package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"movitex/internal/booking"
	"movitex/internal/doclookup"
	"movitex/internal/notifications"
	"movitex/internal/profile"
	"movitex/internal/session"
	"movitex/pkg/cache"
)

const testTab = "5b0c7a52-8d5e-4a59-9a43-1f3b6e1c2d10"

func newTestCache(t *testing.T) (cache.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewService(rdb), mr
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1767261600000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeLookup answers from a fixed table. When gate is set every call waits
// for it to be closed.
type fakeLookup struct {
	mu      sync.Mutex
	calls   []string
	results map[string]*doclookup.Result
	err     error
	gate    chan struct{}
	started chan string
}

func (f *fakeLookup) Lookup(ctx context.Context, doc string) (*doclookup.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, doc)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- doc
	}
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[doc]; ok {
		return r, nil
	}
	return &doclookup.Result{Success: false, Message: "not found"}, nil
}

func (f *fakeLookup) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeProfiles struct {
	profile *profile.Profile
	err     error
}

func (f *fakeProfiles) Current(ctx context.Context) (*profile.Profile, error) {
	return f.profile, f.err
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CreateAuthenticated(ctx context.Context, userID, tripID string, total float64, passengers []booking.Passenger) (*booking.Result, error) {
	args := m.Called(ctx, userID, tripID, total, passengers)
	res, _ := args.Get(0).(*booking.Result)
	return res, args.Error(1)
}

func (m *mockBackend) CreateAnonymous(ctx context.Context, tripID string, total float64, passengers []booking.Passenger, email, phone string) (*booking.Result, error) {
	args := m.Called(ctx, tripID, total, passengers, email, phone)
	res, _ := args.Get(0).(*booking.Result)
	return res, args.Error(1)
}

func (m *mockBackend) TicketData(ctx context.Context, reservationID string) ([]booking.TicketRow, error) {
	args := m.Called(ctx, reservationID)
	rows, _ := args.Get(0).([]booking.TicketRow)
	return rows, args.Error(1)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []*notifications.ReservationEvent
}

func (r *recordingEvents) PublishReservationEvent(ctx context.Context, event *notifications.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) Events() []*notifications.ReservationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notifications.ReservationEvent(nil), r.events...)
}

type testEnv struct {
	cache   cache.Service
	mr      *miniredis.Miniredis
	clock   *fakeClock
	lookup  *fakeLookup
	profile *fakeProfiles
	backend *mockBackend
	events  *recordingEvents
}

func newTestEnv(t *testing.T) *testEnv {
	c, mr := newTestCache(t)
	return &testEnv{
		cache:   c,
		mr:      mr,
		clock:   newFakeClock(),
		lookup:  &fakeLookup{results: map[string]*doclookup.Result{}},
		profile: &fakeProfiles{},
		backend: new(mockBackend),
		events:  &recordingEvents{},
	}
}

func (env *testEnv) store() *session.RedisStore {
	return session.NewRedisStore(env.cache, testTab, time.Hour)
}

func (env *testEnv) config() *EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.LookupDelay = 20 * time.Millisecond
	cfg.LookupTimeout = time.Second
	cfg.TickInterval = 10 * time.Millisecond
	cfg.SubmitTimeout = time.Second
	cfg.Clock = env.clock
	return cfg
}

func (env *testEnv) engine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = env.config()
	}
	e := NewEngine(testTab, Deps{
		Store:    env.store(),
		Profiles: env.profile,
		Lookup:   env.lookup,
		Backend:  env.backend,
		Events:   env.events,
	}, cfg)
	return e
}

func price(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func twoSeats() []session.Seat {
	return []session.Seat{
		{SeatID: 101, SeatNumber: "14", Price: price(45)},
		{SeatID: 102, SeatNumber: "15", Price: price(45)},
	}
}

// fillValid completes every field a guest submission needs.
func fillValid(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	names := [][2]string{{"Juan", "Perez"}, {"Rosa", "Diaz"}}
	docs := []string{"1234567", "7654321"}

	for i := range e.Snapshot().Passengers {
		mustNoErr(t, e.SetDocumentNumber(ctx, i, docs[i%2]))
		mustNoErr(t, e.UpdatePassenger(ctx, i, PassengerPatch{
			FirstName: str(names[i%2][0]),
			LastName:  str(names[i%2][1]),
			BirthDate: str("1990-05-10"),
			Gender:    str("M"),
		}))
	}
	mustNoErr(t, e.UpdateContact(ctx, ContactPatch{Email: str("ana@movitex.pe"), EmailConfirmation: str("ana@movitex.pe"), Phone: str("987654321")}))
	mustNoErr(t, e.UpdateCheckout(ctx, CheckoutPatch{PaymentMethod: str("card"), PolicyAccepted: func() *bool { b := true; return &b }()}))
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
