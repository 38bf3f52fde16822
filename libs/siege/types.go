package siege

import "strings"

type Profile struct {
	ProfileID      string `json:"profileId"`
	UserID         string `json:"userId"`
	PlatformType   string `json:"platformType"`
	IDOnPlatform   string `json:"idOnPlatform"`
	NameOnPlatform string `json:"nameOnPlatform"`
}

type ProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

type Progression struct {
	ProfileID          string `json:"profile_id"`
	Level              int    `json:"level"`
	XP                 int    `json:"xp"`
	LootboxProbability int    `json:"lootbox_probability"`
}

type ProgressionResponse struct {
	PlayerProfiles []Progression `json:"player_profiles"`
}

type statsResponse struct {
	Results map[string]map[string]float64 `json:"results"`
}

// Stats is the flattened statistics of one profile, keyed by statistic name.
type Stats map[string]float64

// KD returns the kill/death ratio of a mode ("casual" or "ranked").
func (s Stats) KD(mode string) float64 {
	deaths := s[mode+"pvp_death"]
	if deaths == 0 {
		return s[mode+"pvp_kills"]
	}
	return s[mode+"pvp_kills"] / deaths
}

// WinRate returns the percentage of matches won in a mode.
func (s Stats) WinRate(mode string) float64 {
	played := s[mode+"pvp_matchwon"] + s[mode+"pvp_matchlost"]
	if played == 0 {
		return 0
	}
	return s[mode+"pvp_matchwon"] / played * 100
}

// Skill returns an operator's special ability counter.
func (s Stats) Skill(operatorName string) (float64, error) {
	key, err := SkillName(operatorName)
	if err != nil {
		return 0, err
	}
	return s[key], nil
}

// flattenStats strips the profile namespace and the trailing ":<suffix>" from each key.
func flattenStats(profileID string, raw map[string]float64) Stats {
	stats := make(Stats, len(raw))
	for key, value := range raw {
		key = strings.TrimPrefix(key, profileID+":")
		if i := strings.LastIndex(key, ":"); i >= 0 {
			key = key[:i]
		}
		stats[key] = value
	}
	return stats
}

const noRankedUpdate = "1970-01-01T00:00:00+00:00"

type RankedStats struct {
	ProfileID                 string  `json:"profile_id"`
	BoardID                   string  `json:"board_id"`
	Region                    string  `json:"region"`
	Season                    int     `json:"season"`
	UpdateTime                string  `json:"update_time"`
	Rank                      int     `json:"rank"`
	MaxRank                   int     `json:"max_rank"`
	MMR                       float64 `json:"mmr"`
	MaxMMR                    float64 `json:"max_mmr"`
	NextRankMMR               float64 `json:"next_rank_mmr"`
	PreviousRankMMR           float64 `json:"previous_rank_mmr"`
	SkillMean                 float64 `json:"skill_mean"`
	SkillStdev                float64 `json:"skill_stdev"`
	Wins                      int     `json:"wins"`
	Losses                    int     `json:"losses"`
	Abandons                  int     `json:"abandons"`
	PastSeasonsWins           int     `json:"past_seasons_wins"`
	PastSeasonsLosses         int     `json:"past_seasons_losses"`
	PastSeasonsAbandons       int     `json:"past_seasons_abandons"`
	LastMatchResult           int     `json:"last_match_result"`
	LastMatchMMRChange        float64 `json:"last_match_mmr_change"`
	LastMatchSkillMeanChange  float64 `json:"last_match_skill_mean_change"`
	LastMatchSkillStdevChange float64 `json:"last_match_skill_stdev_change"`
	TopRankPosition           int     `json:"top_rank_position"`
}

// HasData reports whether the player has played ranked in the record's region.
func (r *RankedStats) HasData() bool {
	return r.UpdateTime != noRankedUpdate
}

func (r *RankedStats) RankName() string {
	return RankName(r.Rank)
}

// WinRate returns the percentage of decided ranked matches won this season.
func (r *RankedStats) WinRate() float64 {
	played := r.Wins + r.Losses
	if played == 0 {
		return 0
	}
	return float64(r.Wins) / float64(played) * 100
}

type rankedResponse struct {
	Players map[string]*RankedStats `json:"players"`
}
