package main

import "github.com/ben-agnew/jollz-r6-rank/libs/siege"

type Account struct {
	Name      string   `json:"name"`
	Platform  string   `json:"platform"`
	ProfileID string   `json:"profileId"`
	Stats     []string `json:"stats"`
	Id        string   `json:"id"`
	Command   string   `json:"command"`
}

// Key identifies the account in the cache.
func (a Account) Key() string {
	return a.Name + "/" + a.Platform
}

type Configuration struct {
	TwitchUsername  string       `env:"TWITCH_USER"`
	TwitchToken     string       `env:"TWITCH_TOKEN"`
	TwitchChannel   string       `env:"TWITCH_CHANNEL"`
	SiegeLoginToken string       `env:"SIEGE_LOGIN_TOKEN"`
	CacheUrl        string       `json:"cacheUrl"`
	Accounts        []Account    `json:"accounts"`
	Siege           siege.Config `json:"siege"`
}
