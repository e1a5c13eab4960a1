package credits

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/planforge/go-session-client/notify"
	"github.com/planforge/go-session-client/session/credstore"
)

// markerLayout is the UTC calendar day stored as the deduction marker.
const markerLayout = "2006-01-02"

// dailyDeductionAmount is the number of credits one genuine login costs.
const dailyDeductionAmount = 1

// Scheduler triggers the remote daily login deduction at most once per UTC
// calendar day per device. The marker is compared on UTC dates, never local
// time, so neither travel nor DST opens a second deduction window.
type Scheduler struct {
	store   credstore.Store
	client  Client
	relay   *notify.Relay
	nowTime func() time.Time
	log     zerolog.Logger
}

// SchedulerOption modifies a Scheduler.
type SchedulerOption func(*Scheduler)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = log
	}
}

// NewScheduler initializes a Scheduler with required dependencies.
func NewScheduler(store credstore.Store, client Client, relay *notify.Relay, options ...SchedulerOption) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("[NewScheduler] store is required")
	}
	if client == nil {
		return nil, errors.New("[NewScheduler] credits client is required")
	}
	if relay == nil {
		return nil, errors.New("[NewScheduler] relay is required")
	}

	scheduler := &Scheduler{
		store:   store,
		client:  client,
		relay:   relay,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(scheduler)
	}
	return scheduler, nil
}

// MaybeDeductDaily runs the daily deduction if it has not run today (UTC).
// Every failure is swallowed: billing bookkeeping must never fail a login.
// When the remote call fails no marker is written, so the next login
// retries.
func (s *Scheduler) MaybeDeductDaily(ctx context.Context, credential string) {
	today := s.nowTime().UTC().Format(markerLayout)

	if marker, err := s.store.DeductionMarker(); err == nil && marker == today {
		return
	}

	result, err := s.client.ProcessDailyDeduction(ctx, credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("daily deduction request failed, will retry on next login")
		return
	}

	switch result.Status {
	case DeductionApplied:
		s.publishDeduction(ctx, credential)
		s.recordMarker(today)
	case DeductionSkipped:
		// The remote side already settled today; remember that so the rest
		// of the day makes no further calls. No notification: nothing was
		// deducted on this login.
		s.recordMarker(today)
	default:
		s.log.Warn().Str("status", string(result.Status)).Str("message", result.Message).
			Msg("daily deduction returned unknown status, will retry on next login")
	}
}

// publishDeduction fetches the post-deduction balance and emits the
// deduction event plus the animation broadcast. A failed balance fetch
// drops the notification only; the deduction itself already happened.
func (s *Scheduler) publishDeduction(ctx context.Context, credential string) {
	balance, err := s.client.Balance(ctx, credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("balance fetch after deduction failed, skipping notification")
		return
	}

	s.relay.PublishDeduction(notify.CreditDeduction{
		CreditsChanged:   dailyDeductionAmount,
		NewBalance:       balance.Credits,
		LowCreditWarning: balance.LowCreditWarning,
		OccurredAt:       s.nowTime(),
	})
	s.relay.PublishAnimation()
}

func (s *Scheduler) recordMarker(today string) {
	if err := s.store.SaveDeductionMarker(today); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist deduction marker")
	}
}
