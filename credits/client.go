// Package credits consumes the platform's billing API and schedules the
// once-per-day login credit deduction.
package credits

import (
	"context"

	"github.com/pkg/errors"
)

var (
	BalanceFetchFailedErr = errors.New("balance fetch failed")
	DeductionFailedErr    = errors.New("daily deduction request failed")
)

// DeductionStatus is the remote verdict on a daily deduction request.
type DeductionStatus string

const (
	// DeductionApplied means a credit was actually deducted.
	DeductionApplied DeductionStatus = "success"
	// DeductionSkipped means the remote side decided no deduction was due
	// (already applied server-side, or the plan does not meter logins).
	DeductionSkipped DeductionStatus = "skipped"
)

// DeductionResult is the response of the daily login deduction operation.
type DeductionResult struct {
	Status  DeductionStatus `json:"status"`
	Message string          `json:"message,omitempty"`
}

// Balance is the account's current credit state.
type Balance struct {
	Credits          int    `json:"credits"`
	LowCreditWarning bool   `json:"lowCreditWarning"`
	PlanStatus       string `json:"planStatus"`
}

// Client is the contract the session layer holds against the billing API.
// The remote deduction operation is itself safe to call more than once per
// day; the client-side scheduler exists to avoid the extra calls.
type Client interface {
	Balance(ctx context.Context, credential string) (*Balance, error)
	ProcessDailyDeduction(ctx context.Context, credential string) (*DeductionResult, error)
}
