// Package clientfake provides an in-memory credits.Client for tests.
package clientfake

import (
	"context"
	"sync"

	"github.com/planforge/go-session-client/credits"
)

// FakeCreditsClient records calls and serves canned responses.
type FakeCreditsClient struct {
	mu sync.Mutex

	BalanceValue *credits.Balance
	BalanceErr   error
	Result       *credits.DeductionResult
	ResultErr    error

	BalanceCalls   int
	DeductionCalls int
}

var _ credits.Client = (*FakeCreditsClient)(nil)

func NewFakeCreditsClient() *FakeCreditsClient {
	return &FakeCreditsClient{
		BalanceValue: &credits.Balance{Credits: 10, PlanStatus: "active"},
		Result:       &credits.DeductionResult{Status: credits.DeductionApplied},
	}
}

func (f *FakeCreditsClient) Balance(ctx context.Context, credential string) (*credits.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.BalanceCalls++
	if f.BalanceErr != nil {
		return nil, f.BalanceErr
	}
	b := *f.BalanceValue
	return &b, nil
}

func (f *FakeCreditsClient) ProcessDailyDeduction(ctx context.Context, credential string) (*credits.DeductionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeductionCalls++
	if f.ResultErr != nil {
		return nil, f.ResultErr
	}
	r := *f.Result
	return &r, nil
}

// Deductions returns how many remote deduction calls have been made.
func (f *FakeCreditsClient) Deductions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DeductionCalls
}
