// Package dataapi talks to the external data API: a json-server style REST store
// exposing one collection per resource.
package dataapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/examhub/portal/core"
)

var defaultHeaders = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// Client sends JSON requests to the data API. No auth headers, no query parameters, no retries.
type Client struct {
	baseURL string
	timeout time.Duration
	rest    *rest.Client
}

func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(baseURL, "baseURL"),
		vala.IsNotNil(httpClient, "httpClient"),
		vala.GreaterThan(int(timeout), 0, "timeout"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "dataapi.NewClient")
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		rest:    &rest.Client{HTTPClient: httpClient},
	}, nil
}

// New returns a Client configured from conf.DataAPI.
func New(conf *core.Config) (*Client, error) {
	return NewClient(conf.DataAPI.BaseURL, &http.Client{}, conf.DataAPI.Timeout)
}

// do sends in as the JSON body and decodes the response body into out when both are given.
// A 404 wraps core.ErrNotFound.
func (c *Client) do(ctx context.Context, method rest.Method, path string, in, out interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: defaultHeaders,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "encoding request body")
		}
		req.Body = body
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, path)
	}
	if res.StatusCode == http.StatusNotFound {
		return res.StatusCode, errors.Wrapf(core.ErrNotFound, "%s %s", method, path)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res.StatusCode, errors.Errorf("%s %s: unexpected status %d: %s", method, path, res.StatusCode, res.Body)
	}

	if out != nil && strings.TrimSpace(res.Body) != "" {
		dec := json.NewDecoder(strings.NewReader(res.Body))
		if err = dec.Decode(out); err != nil {
			return res.StatusCode, errors.Wrapf(err, "decoding %s %s", method, path)
		}
	}
	return res.StatusCode, nil
}
