package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "mediashare"
	s.app.Usage = "Media sharing backend"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml configuration file",
			Value:   "config.toml",
			EnvVars: []string{"MEDIASHARE_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the http api, the /watch change stream and the prometheus metrics.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database schema",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "down", Usage: "Revert the last migration"},
			},
		},
		{
			Action:      s.startSeed,
			Name:        "seed",
			Usage:       "Insert sample creators and media",
			Category:    "Database",
			Description: `Signs up the sample creators then publishes their media. Existing accounts are skipped.`,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "password", Usage: "Password of the sample accounts", Value: "mediashare"},
			},
		},
		{
			Action:      s.startWatch,
			Name:        "watch",
			Usage:       "Follow like and follow changes on a feed",
			Category:    "Client",
			Description: `Signs in through the api, loads a feed, then reloads it on every change event of /watch.`,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "Sign in with this email instead of the cached session"},
				&cli.StringFlag{Name: "password", Usage: "Password of email"},
				&cli.StringFlag{Name: "type", Usage: "Media type of the watched feed", Value: "stream"},
				&cli.StringFlag{Name: "category", Usage: "Category of the watched feed"},
			},
		},
	}
}
