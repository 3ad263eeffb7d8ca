package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "wtfpad"
	s.app.Usage = "Token launch community backend"
	s.app.Flags = []cli.Flag{
		&cli.Int64Flag{
			Name:  "node-id",
			Usage: "Snowflake node of this process, unique per writer",
			Value: 0,
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:   s.startApi,
			Name:     "api",
			Usage:    "Start the HTTP api",
			Category: "Server",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "watcher",
					Usage: "Also run the mint watcher in this process",
				},
			},
			Description: `Serves the registry, voting, xp and leaderboard stream apis.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the scheduler",
			Category:    "Worker",
			Description: `Runs the daily rotation at midnight UTC and the hourly invariant check.`,
		},
		{
			Action:      s.startWatcher,
			Name:        "watcher",
			Usage:       "Start the mint watcher",
			Category:    "Worker",
			Description: `Polls tracked presale contracts for mints and credits the current winner.`,
		},
		{
			Action:      s.startRotate,
			Name:        "rotate",
			Usage:       "Run the daily rotation once",
			Category:    "Tool",
			Description: `Fails when today's rotation already ran.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database schema",
			Category: "Tool",
		},
		{
			Action:   s.startSeed,
			Name:     "seed",
			Usage:    "Load the demo registry",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dump",
					Usage: "Write a SQL dump of the seeded sqlite database to this file",
				},
			},
		},
	}
}
