package siege

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

var generalStats = []string{
	"secureareapvp_bestscore",
	"casualpvp_matchwon",
	"operatorpvp_timeplayed",
	"casualpvp_matchlost",
	"casualpvp_timeplayed",
	"casualpvp_matchplayed",
	"casualpvp_kills",
	"casualpvp_death",
	"rankedpvp_matchwon",
	"rankedpvp_matchlost",
	"rankedpvp_timeplayed",
	"rankedpvp_matchplayed",
	"rankedpvp_kills",
	"rankedpvp_death",
}

// RankedRegions are searched in this order by GetRankedStats.
var RankedRegions = []string{"emea", "ncsa", "apac"}

func validateProfileID(profileID string) error {
	if strings.TrimSpace(profileID) == "" || strings.ContainsAny(profileID, ",:/") {
		return fmt.Errorf("%w: %q", ErrInvalidProfileID, profileID)
	}
	return nil
}

// GetProfiles searches profiles by uplay username, or lists the profiles of an
// account when userID is set.
func (c *Client) GetProfiles(ctx context.Context, username, userID string) (*ProfilesResponse, error) {
	var (
		reqURL string
		params url.Values
	)
	if userID == "" {
		reqURL = c.config.SearchURL
		params = url.Values{
			"nameOnPlatform": {username},
			"platformType":   {"uplay"},
		}
	} else {
		reqURL = fmt.Sprintf("%s/v2/users/%s/profiles", c.config.PublicURL, url.PathEscape(userID))
	}

	var res ProfilesResponse
	if err := c.FetchJSON(ctx, reqURL, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPlayer fetches the level and xp of a profile.
func (c *Client) GetPlayer(ctx context.Context, profileID string, platform Platform) (*ProgressionResponse, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	base, err := c.spaceURL(platform)
	if err != nil {
		return nil, err
	}

	var res ProgressionResponse
	params := url.Values{"profile_ids": {profileID}}
	if err := c.FetchJSON(ctx, base+"/r6playerprofile/playerprofile/progressions", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func statisticsQuery() string {
	keys := append([]string{}, generalStats...)
	for _, name := range Operators() {
		skill, _ := SkillName(name)
		keys = append(keys, skill)
	}
	return strings.Join(keys, ",")
}

// GetPlayerStats fetches the general and operator statistics of a profile.
func (c *Client) GetPlayerStats(ctx context.Context, profileID string, platform Platform) (Stats, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	base, err := c.spaceURL(platform)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"populations": {profileID},
		"statistics":  {statisticsQuery()},
	}
	var res statsResponse
	if err := c.FetchJSON(ctx, base+"/playerstats2/statistics", params, &res); err != nil {
		return nil, err
	}

	raw, ok := res.Results[profileID]
	if !ok {
		return nil, ErrNoStats
	}
	return flattenStats(profileID, raw), nil
}

// GetRankedStats returns the current season record of the first region in
// RankedRegions where the player has played ranked.
func (c *Client) GetRankedStats(ctx context.Context, profileID string, platform Platform) (*RankedStats, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	base, err := c.spaceURL(platform)
	if err != nil {
		return nil, err
	}

	for _, region := range RankedRegions {
		params := url.Values{
			"board_id":    {"pvp_ranked"},
			"profile_ids": {profileID},
			"region_id":   {region},
			"season_id":   {"-1"},
		}

		var res rankedResponse
		err := c.FetchJSON(ctx, base+"/r6karma/players", params, &res)
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			c.logger.WithFields(log.Fields{
				"event":  "siege_ranked",
				"region": region,
			}).Warn(respErr)
			continue
		}
		if err != nil {
			return nil, err
		}

		if record, ok := res.Players[profileID]; ok && record != nil && record.HasData() {
			return record, nil
		}
	}
	return nil, ErrNoRankedData
}
