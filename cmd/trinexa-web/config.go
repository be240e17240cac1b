package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trinexa/trinexa-web/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/trinexa/web.yaml", "Path to configuration file")
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Database path: %s\n", cfg.Database.Path)
	fmt.Printf("  Local auth: %v\n", cfg.Auth.LocalEnabled)
	fmt.Printf("  OIDC auth: %v\n", cfg.Auth.OIDC.Enabled)
	fmt.Printf("  Mail: %v\n", cfg.Mail.Enabled)
	if cfg.Mail.Enabled {
		fmt.Printf("    Relay: %s:%d (DKIM %v)\n", cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.DKIM.Enabled)
	}
	fmt.Printf("  Metrics: %v\n", cfg.Metrics.Enabled)

	return nil
}
