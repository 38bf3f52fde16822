package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ben-agnew/jollz-r6-rank/libs/cache"
	"github.com/ben-agnew/jollz-r6-rank/libs/siege"
)

type RankData struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Rank     string `json:"rank"`
	MaxRank  string `json:"max_rank"`
	MMR      int    `json:"mmr"`
	Change   int    `json:"change"`
	WinRate  string `json:"winrate"`
	KD       string `json:"kd"`
}

func GetRankString(data RankData, account Account) (string, error) {

	// check what stats are requested

	var stats []string
	if len(account.Stats) == 0 {

		stats = []string{"Current Rank: " + data.Rank, "MMR: " + strconv.Itoa(data.MMR), "Winrate: " + data.WinRate}

	} else {

		for _, stat := range account.Stats {
			switch stat {
			case "rank":
				stats = append(stats, "Current Rank: "+data.Rank)
			case "maxrank":
				stats = append(stats, "Max Rank: "+data.MaxRank)
			case "mmr":
				stats = append(stats, "MMR: "+strconv.Itoa(data.MMR))
			case "winrate":
				stats = append(stats, "Winrate: "+data.WinRate)
			case "change":
				stats = append(stats, "Change: "+strconv.Itoa(data.Change))
			case "kd":
				stats = append(stats, "K/D: "+data.KD)
			}

		}
	}

	if len(stats) == 0 {
		return "", errors.New("no known stats selected for " + account.Id)
	}

	return account.Id + ": " + strings.Join(stats, " | "), nil

}

type PlayerNotFoundError struct{}

func (p PlayerNotFoundError) Error() string {
	return "Player not found"
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// resolveProfileID returns the configured profile id, or looks the account name up
// and remembers the answer.
func resolveProfileID(ctx context.Context, account Account) (string, error) {
	if _, err := uuid.Parse(account.ProfileID); err == nil {
		return account.ProfileID, nil
	}

	cacheKey := "jollz:profile:" + strings.ToLower(account.Name)
	if profileID, err := redisCache.Get(cacheKey); err == nil {
		return profileID, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.WithField("event", "profile_cache_get").Error(err)
	}

	res, err := siegeClient.GetProfiles(ctx, account.Name, "")
	if err != nil {
		log.WithField("event", "get_profiles").Error(err)
		return "", err
	}
	if len(res.Profiles) == 0 {
		return "", &PlayerNotFoundError{}
	}

	profileID := res.Profiles[0].ProfileID
	if err := redisCache.SetKeepTtl(cacheKey, profileID); err != nil {
		log.WithField("event", "profile_cache_set").Error(err)
	}
	return profileID, nil
}

func requestRank(ctx context.Context, account Account) (*RankData, error) {

	platform, err := siege.ParsePlatform(account.Platform)
	if err != nil {
		log.WithField("event", "parse_platform").Error(err)
		return nil, err
	}

	profileID, err := resolveProfileID(ctx, account)
	if err != nil {
		return nil, err
	}

	rankData := &RankData{
		Name:     account.Name,
		Platform: string(platform),
		Rank:     siege.RankName(0),
		MaxRank:  siege.RankName(0),
		WinRate:  formatPercent(0),
		KD:       "n/a",
	}

	ranked, err := siegeClient.GetRankedStats(ctx, profileID, platform)
	switch {
	case errors.Is(err, siege.ErrNoRankedData):
		// unranked this season, keep the defaults
	case siege.IsNotFound(err):
		return nil, &PlayerNotFoundError{}
	case err != nil:
		log.WithField("event", "get_ranked_stats").Error(err)
		return nil, err
	default:
		rankData.Rank = ranked.RankName()
		rankData.MaxRank = siege.RankName(ranked.MaxRank)
		rankData.MMR = int(ranked.MMR)
		rankData.Change = int(ranked.LastMatchMMRChange)
		rankData.WinRate = formatPercent(ranked.WinRate())
	}

	stats, err := siegeClient.GetPlayerStats(ctx, profileID, platform)
	if err != nil {
		log.WithField("event", "get_player_stats").Warn(err)
	} else {
		rankData.KD = strconv.FormatFloat(stats.KD("ranked"), 'f', 2, 64)
	}

	return rankData, nil
}

// requestOperatorStat renders the special ability counter of one operator.
func requestOperatorStat(ctx context.Context, account Account, operatorName string) (string, error) {
	label, err := siege.OperatorLabel(operatorName)
	if err != nil {
		return "", err
	}

	platform, err := siege.ParsePlatform(account.Platform)
	if err != nil {
		return "", err
	}
	profileID, err := resolveProfileID(ctx, account)
	if err != nil {
		return "", err
	}

	stats, err := siegeClient.GetPlayerStats(ctx, profileID, platform)
	if err != nil {
		log.WithField("event", "get_player_stats").Error(err)
		return "", err
	}
	value, err := stats.Skill(operatorName)
	if err != nil {
		return "", err
	}

	return account.Id + ": " + strings.ToUpper(operatorName) + " " + label + ": " + strconv.FormatFloat(value, 'f', 0, 64), nil
}

func requestStats(ctx context.Context, account Account) (string, error) {
	platform, err := siege.ParsePlatform(account.Platform)
	if err != nil {
		return "", err
	}
	profileID, err := resolveProfileID(ctx, account)
	if err != nil {
		return "", err
	}

	stats, err := siegeClient.GetPlayerStats(ctx, profileID, platform)
	if err != nil {
		log.WithField("event", "get_player_stats").Error(err)
		return "", err
	}

	parts := []string{
		"Ranked K/D: " + strconv.FormatFloat(stats.KD("ranked"), 'f', 2, 64),
		"Ranked Winrate: " + formatPercent(stats.WinRate("ranked")),
		"Casual K/D: " + strconv.FormatFloat(stats.KD("casual"), 'f', 2, 64),
		"Casual Winrate: " + formatPercent(stats.WinRate("casual")),
	}
	return account.Id + ": " + strings.Join(parts, " | "), nil
}
