package identity

import (
	"context"

	"github.com/pkg/errors"

	"github.com/planforge/go-session-client/internal/apiclient"
	"github.com/planforge/go-session-client/users"
)

const (
	mePath            = "/identity/me"
	roleSelectionPath = "/identity/role-selection"
)

// HTTPClient implements Client against the platform API.
type HTTPClient struct {
	api *apiclient.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an identity client on top of the shared API client.
func NewHTTPClient(api *apiclient.Client) (*HTTPClient, error) {
	if api == nil {
		return nil, errors.New("[identity.NewHTTPClient] api client is required")
	}
	return &HTTPClient{api: api}, nil
}

func (c *HTTPClient) Me(ctx context.Context, credential string) (*users.User, error) {
	user := &users.User{}
	if err := c.api.Get(ctx, credential, mePath, user); err != nil {
		return nil, errors.Wrap(UserFetchFailedErr, err.Error())
	}
	if !user.WellFormed() {
		return nil, errors.Wrap(UserFetchFailedErr, "response missing identity fields")
	}
	return user, nil
}

func (c *HTTPClient) SelectRole(ctx context.Context, credential string, role users.RoleType) error {
	body := struct {
		Role users.RoleType `json:"role"`
	}{Role: role}

	if err := c.api.Post(ctx, credential, roleSelectionPath, body, nil); err != nil {
		return errors.Wrap(RoleSelectionFailsErr, err.Error())
	}
	return nil
}
