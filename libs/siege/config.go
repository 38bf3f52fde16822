package siege

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultAppID     = "39baebad-39e5-4552-8c25-2c9b919064e2"
	DefaultUserAgent = "JollzBot/1.0.0"

	DefaultLoginURL    = "https://uplayconnect.ubi.com/ubiservices/v2/profiles/sessions"
	DefaultSearchURL   = "https://api-ubiservices.ubi.com/v2/profiles"
	DefaultPublicURL   = "https://public-ubiservices.ubi.com"
	DefaultHTTPTimeout = 10 * time.Second
)

// Config holds the settings needed to talk to Ubisoft services.
// LoginToken is the pre-shared basic auth value and must come from outside the program.
// In JSON, timeout is a duration string such as "15s" or a number of seconds.
type Config struct {
	AppID      string        `json:"appId" env:"SIEGE_APP_ID"`
	LoginToken string        `json:"-" env:"SIEGE_LOGIN_TOKEN"`
	UserAgent  string        `json:"userAgent" env:"SIEGE_USER_AGENT"`
	LoginURL   string        `json:"loginUrl"`
	SearchURL  string        `json:"searchUrl"`
	PublicURL  string        `json:"publicUrl"`
	Timeout    time.Duration `json:"timeout"`
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Timeout json.RawMessage `json:"timeout"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timeout) == 0 || string(aux.Timeout) == "null" {
		return nil
	}

	timeout, err := parseTimeout(aux.Timeout)
	if err != nil {
		return err
	}
	c.Timeout = timeout
	return nil
}

func parseTimeout(raw json.RawMessage) (time.Duration, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return 0, fmt.Errorf("siege: invalid timeout %q: %w", text, err)
		}
		return d, nil
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return 0, fmt.Errorf("siege: invalid timeout %s", raw)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (c *Config) setDefaults() {
	if c.AppID == "" {
		c.AppID = DefaultAppID
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.LoginURL == "" {
		c.LoginURL = DefaultLoginURL
	}
	if c.SearchURL == "" {
		c.SearchURL = DefaultSearchURL
	}
	if c.PublicURL == "" {
		c.PublicURL = DefaultPublicURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultHTTPTimeout
	}
}
