package main

import (
	"fmt"

	"brgygo/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply every pending migration",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
					return err
				}

				logrus.Info("Migrations applied")
				return nil
			},
		},
		{
			Name:  "down",
			Usage: "Roll back migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "steps",
					Aliases: []string{"n"},
					Usage:   "Number of migrations to roll back",
					Value:   1,
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				if err := db.MigrateDown(cfg.DatabaseURL, c.Int("steps")); err != nil {
					return err
				}

				logrus.WithField("steps", c.Int("steps")).Info("Migrations rolled back")
				return nil
			},
		},
		{
			Name:  "version",
			Usage: "Print the applied schema version",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				version, dirty, err := db.MigrationVersion(cfg.DatabaseURL)
				if err != nil {
					return err
				}

				fmt.Printf("version %d (dirty: %t)\n", version, dirty)
				return nil
			},
		},
	},
}
