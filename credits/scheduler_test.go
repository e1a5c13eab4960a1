package credits_test

import (
	"context"
	"testing"
	"time"

	"github.com/planforge/go-session-client/credits"
	"github.com/planforge/go-session-client/credits/clientfake"
	"github.com/planforge/go-session-client/notify"
	"github.com/planforge/go-session-client/session/credstore"
	"github.com/stretchr/testify/require"
)

const testCredential = "credential-abc"

type schedulerFixture struct {
	store     *credstore.InMemoryStore
	client    *clientfake.FakeCreditsClient
	relay     *notify.Relay
	scheduler *credits.Scheduler
	now       time.Time
}

func setupScheduler(t *testing.T) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		store:  credstore.NewInMemoryStore(),
		client: clientfake.NewFakeCreditsClient(),
		relay:  notify.NewRelay(),
		now:    time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}

	scheduler, err := credits.NewScheduler(f.store, f.client, f.relay,
		credits.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.scheduler = scheduler
	return f
}

func TestNewSchedulerRequiresDependencies(t *testing.T) {
	relay := notify.NewRelay()
	store := credstore.NewInMemoryStore()
	client := clientfake.NewFakeCreditsClient()

	_, err := credits.NewScheduler(nil, client, relay)
	require.Error(t, err)
	_, err = credits.NewScheduler(store, nil, relay)
	require.Error(t, err)
	_, err = credits.NewScheduler(store, client, nil)
	require.Error(t, err)
}

func TestSchedulerFirstDeductionOfTheDay(t *testing.T) {
	f := setupScheduler(t)
	f.client.BalanceValue = &credits.Balance{Credits: 4, LowCreditWarning: false}

	events, cancel := f.relay.SubscribeDeductions()
	defer cancel()
	animations, cancelAnim := f.relay.SubscribeAnimations()
	defer cancelAnim()

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	require.Equal(t, 1, f.client.Deductions())
	require.Equal(t, 1, f.client.BalanceCalls)

	event := <-events
	require.Equal(t, 1, event.CreditsChanged)
	require.Equal(t, 4, event.NewBalance)
	<-animations

	marker, err := f.store.DeductionMarker()
	require.NoError(t, err)
	require.Equal(t, "2026-08-28", marker)
}

func TestSchedulerSecondCallSameDayMakesNoRemoteCall(t *testing.T) {
	f := setupScheduler(t)

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)
	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	require.Equal(t, 1, f.client.Deductions())
}

func TestSchedulerDeductsAgainNextDay(t *testing.T) {
	f := setupScheduler(t)

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)
	require.Equal(t, 1, f.client.Deductions())

	f.now = f.now.Add(24 * time.Hour)
	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)
	require.Equal(t, 2, f.client.Deductions())

	marker, err := f.store.DeductionMarker()
	require.NoError(t, err)
	require.Equal(t, "2026-08-29", marker)
}

func TestSchedulerUsesUTCDates(t *testing.T) {
	f := setupScheduler(t)

	// 23:30 UTC on the 28th in a UTC+5 zone reads as the 29th locally; the
	// marker must still say the 28th.
	local := time.FixedZone("UTC+5", 5*60*60)
	f.now = time.Date(2026, 8, 29, 4, 30, 0, 0, local)

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	marker, err := f.store.DeductionMarker()
	require.NoError(t, err)
	require.Equal(t, "2026-08-28", marker)
}

func TestSchedulerSkippedRecordsMarkerWithoutNotification(t *testing.T) {
	f := setupScheduler(t)
	f.client.Result = &credits.DeductionResult{Status: credits.DeductionSkipped}

	events, cancel := f.relay.SubscribeDeductions()
	defer cancel()

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	require.Equal(t, 1, f.client.Deductions())
	require.Equal(t, 0, f.client.BalanceCalls)
	require.Empty(t, events)

	marker, err := f.store.DeductionMarker()
	require.NoError(t, err)
	require.Equal(t, "2026-08-28", marker)

	// The marker suppresses further calls for the rest of the day.
	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)
	require.Equal(t, 1, f.client.Deductions())
}

func TestSchedulerRemoteErrorLeavesNoMarker(t *testing.T) {
	f := setupScheduler(t)
	f.client.ResultErr = credits.DeductionFailedErr

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	_, err := f.store.DeductionMarker()
	require.ErrorIs(t, err, credstore.NoMarkerErr)

	// The next login retries.
	f.client.ResultErr = nil
	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)
	require.Equal(t, 2, f.client.Deductions())

	_, err = f.store.DeductionMarker()
	require.NoError(t, err)
}

func TestSchedulerBalanceFailureStillRecordsMarker(t *testing.T) {
	f := setupScheduler(t)
	f.client.BalanceErr = credits.BalanceFetchFailedErr

	events, cancel := f.relay.SubscribeDeductions()
	defer cancel()

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	// The deduction happened remotely, so the day is settled even though
	// the notification was dropped.
	require.Empty(t, events)
	marker, err := f.store.DeductionMarker()
	require.NoError(t, err)
	require.Equal(t, "2026-08-28", marker)
}

func TestSchedulerUnknownStatusLeavesNoMarker(t *testing.T) {
	f := setupScheduler(t)
	f.client.Result = &credits.DeductionResult{Status: "error", Message: "plan suspended"}

	f.scheduler.MaybeDeductDaily(context.Background(), testCredential)

	_, err := f.store.DeductionMarker()
	require.ErrorIs(t, err, credstore.NoMarkerErr)
}
