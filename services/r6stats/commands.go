package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tkanos/gonfig"
	"github.com/urfave/cli/v3"

	"github.com/ben-agnew/jollz-r6-rank/libs/siege"
)

type Configuration struct {
	SiegeLoginToken string       `env:"SIEGE_LOGIN_TOKEN"`
	Siege           siege.Config `json:"siege"`
}

func platformFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Value:   string(siege.PlatformPC),
		Usage:   "PC, PSN or XBL",
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:      "profile",
		Usage:     "Search uplay profiles by username, or list an account's profiles with --user-id",
		ArgsUsage: "<username>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user-id", Usage: "Ubisoft account id"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().First() == "" && cmd.String("user-id") == "" {
				return errors.New("a username or --user-id is required")
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			res, err := client.GetProfiles(ctx, cmd.Args().First(), cmd.String("user-id"))
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func progressionCommand() *cli.Command {
	return &cli.Command{
		Name:      "progression",
		Usage:     "Show level and xp",
		ArgsUsage: "<username|profile-id>",
		Flags:     []cli.Flag{platformFlag()},
		Action: playerAction(func(ctx context.Context, client *siege.Client, profileID string, platform siege.Platform) (any, error) {
			return client.GetPlayer(ctx, profileID, platform)
		}),
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show general and operator statistics",
		ArgsUsage: "<username|profile-id>",
		Flags:     []cli.Flag{platformFlag()},
		Action: playerAction(func(ctx context.Context, client *siege.Client, profileID string, platform siege.Platform) (any, error) {
			return client.GetPlayerStats(ctx, profileID, platform)
		}),
	}
}

func rankedCommand() *cli.Command {
	return &cli.Command{
		Name:      "ranked",
		Usage:     "Show the current ranked season",
		ArgsUsage: "<username|profile-id>",
		Flags:     []cli.Flag{platformFlag()},
		Action: playerAction(func(ctx context.Context, client *siege.Client, profileID string, platform siege.Platform) (any, error) {
			record, err := client.GetRankedStats(ctx, profileID, platform)
			if err != nil {
				return nil, err
			}
			return struct {
				*siege.RankedStats
				RankName string `json:"rank_name"`
			}{record, record.RankName()}, nil
		}),
	}
}

func operatorCommand() *cli.Command {
	return &cli.Command{
		Name:      "operator",
		Usage:     "Show the statistics key and label of an operator's ability counter",
		ArgsUsage: "<operator>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			skill, err := siege.SkillName(name)
			if err != nil {
				return err
			}
			label, _ := siege.OperatorLabel(name)
			return printJSON(cmd, map[string]string{"statistic": skill, "label": label})
		},
	}
}

type playerFunc func(ctx context.Context, client *siege.Client, profileID string, platform siege.Platform) (any, error)

// playerAction resolves the argument to a profile id and prints what fn returns.
func playerAction(fn playerFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		platform, err := siege.ParsePlatform(cmd.String("platform"))
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		profileID, err := resolveProfileID(ctx, client, cmd.Args().First())
		if err != nil {
			return err
		}
		res, err := fn(ctx, client, profileID, platform)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	}
}

func resolveProfileID(ctx context.Context, client *siege.Client, arg string) (string, error) {
	if arg == "" {
		return "", errors.New("a username or profile id is required")
	}
	if _, err := uuid.Parse(arg); err == nil {
		return arg, nil
	}

	res, err := client.GetProfiles(ctx, arg, "")
	if err != nil {
		return "", err
	}
	if len(res.Profiles) == 0 {
		return "", fmt.Errorf("no profile found for %q", arg)
	}
	return res.Profiles[0].ProfileID, nil
}

func loadConfiguration(path string) (Configuration, error) {
	var configuration Configuration
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			configuration.SiegeLoginToken = os.Getenv("SIEGE_LOGIN_TOKEN")
			return configuration, nil
		}
		return configuration, err
	}
	if err := gonfig.GetConf(path, &configuration); err != nil {
		return configuration, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return configuration, nil
}

func newClient(cmd *cli.Command) (*siege.Client, error) {
	configuration, err := loadConfiguration(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	config := configuration.Siege
	config.LoginToken = configuration.SiegeLoginToken
	if token := cmd.String("login-token"); token != "" {
		config.LoginToken = token
	}
	if config.LoginToken == "" {
		return nil, errors.New("no login token, set SIEGE_LOGIN_TOKEN or --login-token")
	}
	return siege.NewClient(config), nil
}

func printJSON(cmd *cli.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, string(out))
	return err
}
