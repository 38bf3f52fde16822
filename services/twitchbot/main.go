package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gempir/go-twitch-irc/v3"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/tkanos/gonfig"

	"github.com/ben-agnew/jollz-r6-rank/libs/cache"
	"github.com/ben-agnew/jollz-r6-rank/libs/siege"
)

const currentKey = "jollz: current"

var configuration Configuration
var redisCache cache.Cache
var siegeClient *siege.Client

// chat is the part of the twitch client the commands reply through.
type chat interface {
	Say(channel, text string)
}

func main() {

	log.Info("Starting twitchbot...")
	if err := godotenv.Load(); err != nil {
		log.WithField("event", "load_env").Debug(err)
	}
	err := gonfig.GetConf("config.json", &configuration)
	if err != nil {
		log.WithField("event", "load_config").Fatal(err)
		return
	}
	if len(configuration.Accounts) == 0 {
		log.WithField("event", "load_config").Fatal("no accounts configured")
		return
	}

	siegeConfig := configuration.Siege
	siegeConfig.LoginToken = configuration.SiegeLoginToken
	siegeClient = siege.NewClient(siegeConfig)

	client := twitch.NewClient(configuration.TwitchUsername, configuration.TwitchToken)
	client.SetJoinRateLimiter(twitch.CreateVerifiedRateLimiter())

	redisCache = cache.NewCache(configuration.CacheUrl)

	err = redisCache.SetKeepTtl(currentKey, configuration.Accounts[0].Key())
	if err != nil {
		log.WithField("event", "user_command_cache_set").Error(err)
	}

	client.OnPrivateMessage(func(message twitch.PrivateMessage) {
		go handleMessage(message, client)
	})
	client.Join(configuration.TwitchChannel)

	client.OnConnect(func() {
		log.WithField("event", "irc_connected").Info("IRC connected")
	})

	err = client.Connect()
	if err != nil {
		log.WithField("event", "irc_connect").Fatal(err)
		return
	}
}

func handleMessage(message twitch.PrivateMessage, client chat) {

	if message.Channel == strings.ToLower(configuration.TwitchChannel) {
		switch strings.Split(strings.ToLower(message.Message), " ")[0] {
		case "!rank":
			rankCommand(&message, client)

		case "!stats":
			statsCommand(&message, client)

		case "!accounts":
			accountsCommand(&message, client)

		case "!setcurrent":
			setCurrentCommand(&message, client)

		case "!current":
			currentCommand(&message, client)
		case "!bot":
			botCommand(&message, client)
		default:
			checkCommands(&message, client)
		}

	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// currentAccount returns the index of the selected account, restoring the default
// selection when the cache lost it.
func currentAccount() int {
	current, err := redisCache.Get(currentKey)
	if err != nil {
		current = configuration.Accounts[0].Key()
		err = redisCache.SetKeepTtl(currentKey, current)
		if err != nil {
			log.WithField("event", "user_command_cache_set").Error(err)
		}
	}
	return getCurrentIndex(current)
}

// rankReply answers from the one minute cache, or fetches and caches a fresh rank.
func rankReply(accountIndex int) (string, error) {
	account := configuration.Accounts[accountIndex]

	cachedStr, err := redisCache.Get("jollz:" + account.Key())
	if err == nil {
		cached := RankData{}
		err = json.Unmarshal([]byte(cachedStr), &cached)
		if err == nil {
			return GetRankString(cached, account)
		}
		log.WithField("event", "user_command_cache_get").Error(err)
	}

	ctx, cancel := requestContext()
	defer cancel()

	data, err := requestRank(ctx, account)
	if err != nil {
		return "", err
	}

	// cache for 1 minute
	cachedBytes, err := json.Marshal(data)
	if err != nil {
		log.WithField("event", "user_command_cache_set").Error(err)
	} else {
		err = redisCache.SetWithTtl("jollz:"+account.Key(), string(cachedBytes), time.Minute)
		if err != nil {
			log.WithField("event", "user_command_cache_set").Error(err)
		}
	}

	return GetRankString(*data, account)
}

func rankCommand(message *twitch.PrivateMessage, client chat) {
	replyStr, err := rankReply(currentAccount())
	if err != nil {
		var notFound *PlayerNotFoundError
		if errors.As(err, &notFound) {
			client.Say(message.Channel, "Player not found")
			return
		}
		client.Say(message.Channel, "Error getting rank")
		return
	}
	client.Say(message.Channel, replyStr)
}

func statsCommand(message *twitch.PrivateMessage, client chat) {
	account := configuration.Accounts[currentAccount()]

	ctx, cancel := requestContext()
	defer cancel()

	// "!stats <operator>" asks for one operator's ability counter

	args := strings.Fields(message.Message)
	var replyStr string
	var err error
	if len(args) > 1 {
		replyStr, err = requestOperatorStat(ctx, account, args[1])
	} else {
		replyStr, err = requestStats(ctx, account)
	}
	if err != nil {
		var notFound *PlayerNotFoundError
		if errors.As(err, &notFound) {
			client.Say(message.Channel, "Player not found")
			return
		}
		client.Say(message.Channel, "@"+message.User.DisplayName+": Error getting stats")
		return
	}
	client.Say(message.Channel, replyStr)
}

func accountsCommand(message *twitch.PrivateMessage, client chat) {

	// check if user is mod or broadcaster

	if !modCaster(message) {
		return
	}

	var accountNames = []string{}

	for i, account := range configuration.Accounts {

		accountNames = append(accountNames, strconv.Itoa(i+1)+". "+account.Name+" ("+account.Id+")")

	}
	log.WithField("event", "accounts_command").Info(message.User.Name + " used accounts command")

	client.Say(message.Channel, "Accounts: "+strings.Join(accountNames, ", "))
}

func setCurrentCommand(message *twitch.PrivateMessage, client chat) {
	// check if user is mod or broadcaster

	if !modCaster(message) {
		return
	}

	// get selected account, by number or by name

	msg := strings.TrimPrefix(strings.ToLower(message.Message), "!setcurrent ")
	index, err := strconv.Atoi(msg)
	if err != nil {
		index = -1
		for i, account := range configuration.Accounts {
			if strings.ToLower(account.Name) == msg {
				index = i
				break
			}
		}
		if index == -1 {
			client.Say(message.Channel, "@"+message.User.DisplayName+": Account not found")
			return
		}
	} else {
		// check if index is valid

		if index > len(configuration.Accounts) || index < 1 {
			client.Say(message.Channel, "@"+message.User.DisplayName+": Invalid account number")
			return
		}
		index--
	}

	account := configuration.Accounts[index]

	err = redisCache.SetKeepTtl(currentKey, account.Key())
	if err != nil {
		log.WithField("event", "user_command_cache_set").Error(err)
		client.Say(message.Channel, "@"+message.User.DisplayName+": Error setting account")
		return
	}
	log.WithField("event", "set_current_command").Info(message.User.Name + " set current account to " + account.Name)
	client.Say(message.Channel, "@"+message.User.DisplayName+": Current account set to "+account.Name+" ("+account.Id+")")
}

func currentCommand(message *twitch.PrivateMessage, client chat) {
	// get current account

	current, err := redisCache.Get(currentKey)
	if err != nil {
		client.Say(message.Channel, "@"+message.User.DisplayName+": Error getting current account")
		return
	}

	account := configuration.Accounts[getCurrentIndex(current)]
	client.Say(message.Channel, "@"+message.User.DisplayName+": Current account is "+account.Name+" ("+account.Id+")")
}

func getCurrentIndex(current string) int {
	for i, account := range configuration.Accounts {
		if account.Key() == current {
			return i
		}
	}
	return 0
}

func checkCommands(message *twitch.PrivateMessage, client chat) {

	// check if message is command

	if !strings.HasPrefix(message.Message, "!") {
		return
	}

	command := strings.ToLower(strings.Split(message.Message, " ")[0])
	for i, account := range configuration.Accounts {

		if command != strings.ToLower(account.Command) {
			continue
		}

		replyStr, err := rankReply(i)
		if err != nil {
			client.Say(message.Channel, "Error getting rank")
			return
		}
		client.Say(message.Channel, replyStr)
		return
	}
}

func botCommand(message *twitch.PrivateMessage, client chat) {
	client.Say(message.Channel, "@"+message.User.DisplayName+": Hello")
}

// check if user is mod or broadcaster

func modCaster(message *twitch.PrivateMessage) bool {

	isMod, ok := message.Tags["mod"]
	if ok && isMod != "1" {
		if strings.ToLower(message.Tags["display-name"]) != strings.ToLower(message.Channel) {
			return false
		}
	}
	return true

}
