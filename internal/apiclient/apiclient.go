// Package apiclient performs bearer-authenticated JSON calls against the
// platform API. It is shared plumbing for the identity and credits clients.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Client issues requests against a single API base URL. The credential is
// supplied per call because the session layer owns its lifecycle.
type Client struct {
	baseURL string
	base    *http.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, errors.New("[apiclient.New] a valid base URL is required")
	}
	return &Client{
		baseURL: baseURL,
		base:    &http.Client{Timeout: timeout},
	}, nil
}

// Get issues a GET and decodes the 2xx response body into out.
func (c *Client) Get(ctx context.Context, credential, path string, out any) error {
	return c.do(ctx, credential, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the 2xx response into out.
// Both body and out may be nil.
func (c *Client) Post(ctx context.Context, credential, path string, body, out any) error {
	return c.do(ctx, credential, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, credential, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[apiclient.do] marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "[apiclient.do] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.bearerClient(ctx, credential).Do(req)
	if err != nil {
		return errors.Wrap(err, "[apiclient.do] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("[apiclient.do] %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[apiclient.do] decode response body")
	}
	return nil
}

// bearerClient wraps the base client with an oauth2 transport that injects
// the Authorization header for this credential.
func (c *Client) bearerClient(ctx context.Context, credential string) *http.Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	return oauth2.NewClient(ctx, source)
}
