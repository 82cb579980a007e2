package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "rewards"
	s.app.Usage = "XP reward and redemption engine"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path of the TOML config file",
			Value:   "config/default.toml",
			EnvVars: []string{"REWARDS_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serve the award, profile, redemption and payment webhook apis.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start purchase subscriber",
			Category:    "Worker",
			Description: `Consume completed purchases from the message queue and award their XP.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Retry pending awards and achievement checks, reconcile the ledger.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database schema",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "rollback",
					Usage: "Revert the last n migrations instead of migrating up",
				},
			},
			Description: `Apply the embedded SQL migrations and seed the achievement catalog.`,
		},
	}
}
