package credits

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planforge/go-session-client/internal/apiclient"
)

const (
	balancePath        = "/credits/balance"
	dailyDeductionPath = "/credits/daily-login-deduction"
)

// HTTPClient implements Client against the platform API.
type HTTPClient struct {
	api *apiclient.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a credits client on top of the shared API client.
func NewHTTPClient(api *apiclient.Client) (*HTTPClient, error) {
	if api == nil {
		return nil, errors.New("[credits.NewHTTPClient] api client is required")
	}
	return &HTTPClient{api: api}, nil
}

func (c *HTTPClient) Balance(ctx context.Context, credential string) (*Balance, error) {
	balance := &Balance{}
	if err := c.api.Get(ctx, credential, balancePath, balance); err != nil {
		return nil, errors.Wrap(BalanceFetchFailedErr, err.Error())
	}
	return balance, nil
}

func (c *HTTPClient) ProcessDailyDeduction(ctx context.Context, credential string) (*DeductionResult, error) {
	result := &DeductionResult{}
	if err := c.api.Post(ctx, credential, dailyDeductionPath, nil, result); err != nil {
		return nil, errors.Wrap(DeductionFailedErr, err.Error())
	}
	return result, nil
}
