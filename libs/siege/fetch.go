package siege

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
)

type fetchOptions struct {
	allowRelogin bool
	headers      map[string]string
}

type FetchOption func(*fetchOptions)

// WithoutRelogin disables the single relogin attempt on a 401.
func WithoutRelogin() FetchOption {
	return func(o *fetchOptions) {
		o.allowRelogin = false
	}
}

// WithHeader sets a header over the defaults.
func WithHeader(key, value string) FetchOption {
	return func(o *fetchOptions) {
		o.headers[key] = value
	}
}

// FetchJSON performs an authenticated GET and decodes the JSON body into out.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, params url.Values, out any, opts ...FetchOption) error {
	body, err := c.FetchRaw(ctx, rawURL, params, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return nil
}

// FetchRaw performs an authenticated GET and returns the body as is.
func (c *Client) FetchRaw(ctx context.Context, rawURL string, params url.Values, opts ...FetchOption) ([]byte, error) {
	o := fetchOptions{
		allowRelogin: true,
		headers:      map[string]string{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return c.fetch(ctx, rawURL, params, o.allowRelogin, o.headers)
}

func (c *Client) fetch(ctx context.Context, rawURL string, params url.Values, allowRelogin bool, headers map[string]string) ([]byte, error) {
	creds, ok := c.store.Credentials()
	if !ok {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		creds, _ = c.store.Credentials()
	}

	reqURL, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Ubi-AppId", c.config.AppID)
	req.Header.Set("Authorization", creds.Authorization())
	req.Header.Set("ubi-sessionid", creds.SessionID)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	c.logger.WithField("event", "siege_get").Infof("GET => %s", reqURL)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", reqURL, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", reqURL, err)
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusUnauthorized && allowRelogin:
		if err := c.relogin(ctx, creds); err != nil {
			return nil, err
		}
		return c.fetch(ctx, rawURL, params, false, headers)
	default:
		c.logger.WithFields(log.Fields{
			"event":  "siege_get",
			"status": res.StatusCode,
		}).Warn(string(body))
		return nil, &ResponseError{
			Kind:       kindForStatus(res.StatusCode),
			StatusCode: res.StatusCode,
			URL:        reqURL,
			Body:       body,
		}
	}
}

// buildURL appends the non-empty params to rawURL.
func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	query := u.Query()
	for key, values := range params {
		for _, value := range values {
			if value != "" {
				query.Add(key, value)
			}
		}
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
