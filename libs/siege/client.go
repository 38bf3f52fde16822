// Package siege is a client for the Ubisoft services that back Rainbow Six Siege
// player statistics. It logs in lazily, keeps the issued session on the Client and
// logs in again once when a request comes back unauthorized.
package siege

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type Client struct {
	config     Config
	httpClient *http.Client
	store      CredentialStore
	logger     log.FieldLogger
	logins     singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCredentialStore replaces the default MemoryStore.
func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(config Config, opts ...Option) *Client {
	config.setDefaults()

	c := &Client{
		config: config,
		store:  NewMemoryStore(),
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: config.Timeout}
	}
	return c
}

type loginResponse struct {
	Ticket    string `json:"ticket"`
	SessionID string `json:"sessionId"`
}

// Login requests a new session from the identity service and replaces the stored
// credentials. Concurrent calls share one request, which is not cancelled when a
// single caller gives up; each caller still returns on its own ctx.
func (c *Client) Login(ctx context.Context) error {
	ch := c.logins.DoChan("login", func() (interface{}, error) {
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
		defer cancel()
		return nil, c.login(loginCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// relogin logs in again after a 401, unless another request already replaced the
// credentials the rejected request was sent with.
func (c *Client) relogin(ctx context.Context, rejected Credentials) error {
	if current, ok := c.store.Credentials(); ok && current.Ticket != rejected.Ticket {
		return nil
	}
	return c.Login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.LoginURL, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Ubi-RequestedPlatformType", "uplay")
	req.Header.Set("Ubi-AppId", c.config.AppID)
	req.Header.Set("Authorization", "Basic "+c.config.LoginToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithField("event", "siege_login").Infof("POST => %s", req.URL)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		authErr := &AuthenticationError{StatusCode: res.StatusCode, Body: body}
		_ = json.Unmarshal(body, &authErr.Payload)
		c.logger.WithField("event", "siege_login").Error(authErr)
		return authErr
	}

	var session loginResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if session.Ticket == "" {
		return &AuthenticationError{StatusCode: res.StatusCode, Body: body}
	}

	c.store.SetCredentials(Credentials{
		Ticket:    session.Ticket,
		SessionID: session.SessionID,
	})
	return nil
}
