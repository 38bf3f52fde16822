package siege

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformPC  Platform = "PC"
	PlatformPSN Platform = "PSN"
	PlatformXBL Platform = "XBL"
)

var Platforms = []Platform{PlatformPC, PlatformPSN, PlatformXBL}

// Endpoint scopes a request to the game build of one platform.
type Endpoint struct {
	SpaceID   string
	SandboxID string
}

var endpoints = map[Platform]Endpoint{
	PlatformPC:  {SpaceID: "5172a557-50b5-4665-b7db-e3f2e8c5041d", SandboxID: "OSBOR_PC_LNCH_A"},
	PlatformPSN: {SpaceID: "05bfb3f7-6c21-4c42-be1f-97a33fb5cf66", SandboxID: "OSBOR_PS4_LNCH_A"},
	PlatformXBL: {SpaceID: "98a601e5-ca91-4440-b1c5-753f601a2c90", SandboxID: "OSBOR_XBOXONE_LNCH_A"},
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := endpoints[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return p, nil
}

func (p Platform) Endpoint() (Endpoint, error) {
	e, ok := endpoints[p]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
	}
	return e, nil
}

// spaceURL returns the base of every platform scoped data endpoint.
func (c *Client) spaceURL(p Platform) (string, error) {
	e, err := p.Endpoint()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/v1/spaces/%s/sandboxes/%s", c.config.PublicURL, e.SpaceID, e.SandboxID), nil
}
