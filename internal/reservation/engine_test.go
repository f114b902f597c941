package reservation

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movitex/internal/profile"
	"movitex/internal/session"
	"movitex/internal/shared/constants"
)

func TestInitializeWithoutTotalOrTimer(t *testing.T) {
	env := newTestEnv(t)
	e := env.engine(nil)
	t.Cleanup(e.Close)

	err := e.Initialize(context.Background(), InitOptions{
		ForceReset: true,
		TripID:     "T1",
		Seats:      twoSeats(),
	})
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.True(t, snap.Initialized)
	assert.Nil(t, snap.TotalPrice)
	assert.Nil(t, snap.Timer)
	assert.Zero(t, snap.Remaining)
	require.Len(t, snap.Passengers, 2)
	assert.Equal(t, "14", snap.Passengers[0].SeatNumber)
	assert.Equal(t, 45.0, snap.Passengers[1].Price)
	assert.Equal(t, LookupIdle, snap.Passengers[0].LookupState)

	rec, err := env.store().Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec.TotalPrice)
	assert.Nil(t, rec.TimerDeadline)
	assert.Len(t, rec.SelectedSeats, 2)
}

func TestInitializeSplitsTotalWhenSeatsHaveNoPrice(t *testing.T) {
	env := newTestEnv(t)
	e := env.engine(nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.Initialize(context.Background(), InitOptions{
		ForceReset: true,
		TripID:     "T1",
		Seats:      []session.Seat{{SeatID: 1, SeatNumber: "1"}, {SeatID: 2, SeatNumber: "2"}},
		TotalPrice: price(100),
	}))

	snap := e.Snapshot()
	assert.Equal(t, 50.0, snap.Passengers[0].Price)
	assert.Equal(t, 50.0, snap.Passengers[1].Price)
	assert.Equal(t, 100.0, *snap.TotalPrice)
}

func TestInitializeWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	e := env.engine(nil)
	err := e.Initialize(context.Background(), InitOptions{})
	assert.ErrorIs(t, err, ErrRedirectHome)
	assert.False(t, e.Snapshot().Initialized)

	e = env.engine(nil)
	require.NoError(t, e.Initialize(context.Background(), InitOptions{AllowEmpty: true}))
	snap := e.Snapshot()
	assert.True(t, snap.Initialized)
	assert.Empty(t, snap.Passengers)
}

func TestResetDiscardsPreviousSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := env.engine(nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.Initialize(ctx, InitOptions{ForceReset: true, TripID: "T1", Seats: twoSeats()}))
	fillValid(t, e)

	require.NoError(t, e.Initialize(ctx, InitOptions{
		ForceReset: true,
		TripID:     "T2",
		Seats:      []session.Seat{{SeatID: 301, SeatNumber: "3", Price: price(60)}},
	}))

	snap := e.Snapshot()
	assert.Equal(t, "T2", snap.TripID)
	require.Len(t, snap.Passengers, 1)
	assert.Empty(t, snap.Passengers[0].DocumentNumber)
	assert.Empty(t, snap.Passengers[0].FirstName)
	assert.Equal(t, Contact{}, snap.Contact)
	assert.Empty(t, snap.PaymentMethod)
	assert.False(t, snap.PolicyAccepted)

	rec, err := env.store().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", rec.TripID)
	require.NotNil(t, rec.Forms)
	assert.Empty(t, rec.Forms.Email)
	assert.Len(t, rec.Forms.Passengers, 1)
}

func TestReloadRestoresFormsAndNeverExtendsTheHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	now := env.clock.Now()
	first := env.engine(nil)
	require.NoError(t, first.Initialize(ctx, InitOptions{
		ForceReset: true,
		TripID:     "T1",
		Seats:      twoSeats(),
		Timer:      &Timer{StartedAt: now, Deadline: now.Add(10 * time.Minute)},
	}))
	fillValid(t, first)
	before := first.Snapshot()
	first.Close()

	env.clock.Advance(30 * time.Second)

	second := env.engine(nil)
	t.Cleanup(second.Close)
	require.NoError(t, second.Initialize(ctx, InitOptions{}))

	after := second.Snapshot()
	assert.Equal(t, before.TripID, after.TripID)
	assert.Equal(t, before.Contact, after.Contact)
	assert.Equal(t, before.PaymentMethod, after.PaymentMethod)
	assert.Equal(t, before.PolicyAccepted, after.PolicyAccepted)
	for i := range before.Passengers {
		assert.Equal(t, before.Passengers[i].DocumentNumber, after.Passengers[i].DocumentNumber)
		assert.Equal(t, before.Passengers[i].FirstName, after.Passengers[i].FirstName)
	}
	require.NotNil(t, after.Timer)
	assert.Equal(t, before.Timer.Deadline.UnixMilli(), after.Timer.Deadline.UnixMilli())
	assert.LessOrEqual(t, after.Remaining, 10*time.Minute-30*time.Second)
	assert.Greater(t, after.Remaining, time.Duration(0))
}

func TestInitializeWithPastDeadlineIsExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store().Save(ctx, &session.Record{
		TripID:        "T1",
		SelectedSeats: twoSeats(),
		TimerDeadline: session.EpochMillis(env.clock.Now().Add(-time.Second)),
	}))

	e := env.engine(nil)
	t.Cleanup(e.Close)
	require.NoError(t, e.Initialize(ctx, InitOptions{}))

	snap := e.Snapshot()
	assert.True(t, snap.Expired)
	assert.Zero(t, snap.Remaining)
	assert.Equal(t, PhaseExpiring, snap.Phase)
}

func TestInitializeMigratesLegacyKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	deadline := env.clock.Now().Add(5 * time.Minute).UnixMilli()
	key := func(name string) string { return constants.BuildTabKey(testTab, name) }
	require.NoError(t, env.mr.Set(key(constants.SESSION_KEY_LEGACY_TRIP),
		`{"tripId":"T9","selectedSeats":[{"seatId":7,"seatNumber":"7","price":30}],"totalPrice":30}`))
	require.NoError(t, env.mr.Set(key(constants.SESSION_KEY_LEGACY_TIMER_DEADLINE), strconv.FormatInt(deadline, 10)))
	require.NoError(t, env.mr.Set(key(constants.SESSION_KEY_LEGACY_FORMS),
		`{"passengers":[{"seatNumber":"7","seatId":7,"price":30,"firstName":"Lucia"}],"phone":"912345678"}`))

	e := env.engine(nil)
	t.Cleanup(e.Close)
	require.NoError(t, e.Initialize(ctx, InitOptions{}))

	snap := e.Snapshot()
	assert.Equal(t, "T9", snap.TripID)
	assert.Equal(t, "Lucia", snap.Passengers[0].FirstName)
	assert.Equal(t, "912345678", snap.Contact.Phone)
	require.NotNil(t, snap.Timer)
	assert.Equal(t, deadline, snap.Timer.Deadline.UnixMilli())

	assert.False(t, env.mr.Exists(key(constants.SESSION_KEY_LEGACY_TRIP)))
	assert.False(t, env.mr.Exists(key(constants.SESSION_KEY_LEGACY_FORMS)))
	assert.True(t, env.mr.Exists(key(constants.SESSION_KEY_RESERVATION)))
}

func TestMalformedLegacySessionIsTreatedAsEmpty(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.mr.Set(constants.BuildTabKey(testTab, constants.SESSION_KEY_LEGACY_TRIP), "{broken"))

	e := env.engine(nil)
	assert.ErrorIs(t, e.Initialize(context.Background(), InitOptions{}), ErrRedirectHome)
}

func TestProfileBackfillNeverOverwritesStoredValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.profile.profile = &profile.Profile{
		UserID:         "2f1c5a8e-3b7d-4c1e-9a6f-0d4e8b2c7a91",
		DocumentNumber: "44556677",
		FirstName:      "Maria",
		LastName:       "Quispe",
		BirthDate:      "1985-02-14",
		Gender:         "F",
		Email:          "maria@movitex.pe",
		Phone:          "999888777",
	}

	require.NoError(t, env.store().Save(ctx, &session.Record{
		TripID:        "T1",
		SelectedSeats: twoSeats(),
		Forms: &session.Forms{
			Passengers: []session.PassengerData{{SeatNumber: "14", SeatID: 101, FirstName: "Stored"}},
			Phone:      "911111111",
		},
	}))

	e := env.engine(nil)
	t.Cleanup(e.Close)
	require.NoError(t, e.Initialize(ctx, InitOptions{}))

	snap := e.Snapshot()
	first := snap.Passengers[0]
	assert.Equal(t, "Stored", first.FirstName)
	assert.Equal(t, "Quispe", first.LastName)
	assert.Equal(t, "44556677", first.DocumentNumber)
	assert.Equal(t, "F", first.Gender)
	assert.Empty(t, snap.Passengers[1].FirstName)
	assert.Equal(t, "maria@movitex.pe", snap.Contact.Email)
	assert.Equal(t, "911111111", snap.Contact.Phone)
}

func TestMutationsMergeWithStoredRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	e := env.engine(nil)
	t.Cleanup(e.Close)
	require.NoError(t, e.Initialize(ctx, InitOptions{
		ForceReset:  true,
		TripID:      "T1",
		TripDetails: &session.TripDetails{Origin: "Lima", Destination: "Arequipa"},
		Seats:       twoSeats(),
		Timer:       &Timer{StartedAt: now, Deadline: now.Add(time.Minute)},
	}))

	require.NoError(t, e.UpdateContact(ctx, ContactPatch{Email: str("luis@movitex.pe")}))
	require.NoError(t, e.UpdatePassenger(ctx, 1, PassengerPatch{Gender: str("M")}))

	rec, err := env.store().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", rec.TripID)
	assert.Equal(t, "Arequipa", rec.TripDetails.Destination)
	assert.Equal(t, now.Add(time.Minute).UnixMilli(), *rec.TimerDeadline)
	assert.Equal(t, "luis@movitex.pe", rec.Forms.Email)
	assert.Equal(t, "M", rec.Forms.Passengers[1].Gender)
}

func TestMutationsRequireInitializedSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := env.engine(nil)

	assert.ErrorIs(t, e.UpdateContact(ctx, ContactPatch{Email: str("x@y.pe")}), ErrNotInitialized)
	assert.ErrorIs(t, e.UpdateCheckout(ctx, CheckoutPatch{PaymentMethod: str("card")}), ErrNotInitialized)
	assert.ErrorIs(t, e.UpdatePassenger(ctx, 0, PassengerPatch{}), ErrPassengerIndex)
	assert.ErrorIs(t, e.SetDocumentNumber(ctx, 3, "12345678"), ErrPassengerIndex)
	assert.Empty(t, env.mr.Keys())
}

func TestClearRemovesEveryKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := env.engine(nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.Initialize(ctx, InitOptions{ForceReset: true, TripID: "T1", Seats: twoSeats()}))
	require.NoError(t, env.mr.Set(constants.BuildTabKey(testTab, constants.SESSION_KEY_LEGACY_FORMS), "{}"))

	require.NoError(t, e.Clear(ctx))
	assert.Empty(t, env.mr.Keys())
	assert.False(t, e.Snapshot().Initialized)
}

func TestResetRejectsDuplicateSeats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := env.engine(nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.Initialize(ctx, InitOptions{ForceReset: true, TripID: "T1", Seats: twoSeats()}))

	err := e.Initialize(ctx, InitOptions{
		ForceReset: true,
		TripID:     "T2",
		Seats: []session.Seat{
			{SeatID: 12, SeatNumber: "14"},
			{SeatID: 12, SeatNumber: "14"},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateSeat)
	assert.True(t, IsValidation(err))

	snap := e.Snapshot()
	assert.Equal(t, "T1", snap.TripID)
	assert.Len(t, snap.Passengers, 2)

	rec, err := env.store().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", rec.TripID)
}
