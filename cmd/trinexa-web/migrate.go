package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/web/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default page sections for pages that have none",
	RunE:  runSeed,
}

func init() {
	migrateCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/trinexa/web.yaml", "Path to configuration file")
	seedCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/trinexa/web.yaml", "Path to configuration file")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	fmt.Println("Migrations completed successfully")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	n, err := database.Seed()
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Println("All pages already have sections, nothing to do")
	} else {
		fmt.Printf("Seeded %d page sections\n", n)
	}
	return nil
}
