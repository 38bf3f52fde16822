package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	loadEnv()

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.WithField("event", "r6stats").Fatal(err)
	}
}

// loadEnv reads .env style files into the environment; a missing file is only
// worth a debug line.
func loadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		log.WithField("event", "load_env").Debug(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "r6stats",
		Usage: "Look up Rainbow Six Siege profiles and statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "Path to the JSON configuration file",
			},
			&cli.StringFlag{
				Name:    "login-token",
				Usage:   "Basic auth token for the Ubisoft identity service",
				Sources: cli.EnvVars("SIEGE_LOGIN_TOKEN"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every request",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			profileCommand(),
			progressionCommand(),
			statsCommand(),
			rankedCommand(),
			operatorCommand(),
		},
	}
}
