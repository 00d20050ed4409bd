package main

import (
	"context"
	"fmt"
	"os"

	"brgygo/internal/db"
	"brgygo/internal/seed"
	"brgygo/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with starter announcements and an admin profile",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "admin-subject",
			Usage: "Identity provider subject (sub claim) to grant the admin role",
		},
		&cli.StringFlag{
			Name:  "admin-email",
			Usage: "Email stored on the admin profile",
		},
		&cli.StringFlag{
			Name:  "admin-name",
			Usage: "Full name stored on the admin profile",
			Value: "Barangay Administrator",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Pretty print the seeded rows",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		// Connect to database
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		announcements, err := seed.SeedAnnouncements(ctx, os.Stdout, store.NewAnnouncementRepository(pool))
		if err != nil {
			return fmt.Errorf("failed to seed announcements: %w", err)
		}

		if c.Bool("verbose") {
			pp.Println(announcements)
		}

		if c.String("admin-subject") == "" {
			logrus.Info("No --admin-subject given, skipping admin profile")
			return nil
		}

		admin, err := seed.SeedAdmin(ctx, os.Stdout, store.NewProfileRepository(pool), seed.AdminSeed{
			Subject:  c.String("admin-subject"),
			Email:    c.String("admin-email"),
			FullName: c.String("admin-name"),
		})
		if err != nil {
			return fmt.Errorf("failed to seed admin profile: %w", err)
		}

		if c.Bool("verbose") {
			pp.Println(admin)
		}

		logrus.Info("Seed complete")
		return nil
	},
}
