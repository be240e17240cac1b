package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/logsink"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect and prune the persisted diagnostic log",
}

var logsDaysCmd = &cobra.Command{
	Use:   "days",
	Short: "List the days that have stored log entries",
	RunE:  runLogsDays,
}

var logsExportCmd = &cobra.Command{
	Use:   "export [date]",
	Short: "Print the stored entries for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogsExport,
}

var logsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete day buckets older than the retention window",
	RunE:  runLogsPrune,
}

var logsPruneDays int

func init() {
	logsPruneCmd.Flags().IntVar(&logsPruneDays, "keep", logsink.DefaultRetentionDays, "Number of days to keep")

	logsCmd.AddCommand(logsDaysCmd)
	logsCmd.AddCommand(logsExportCmd)
	logsCmd.AddCommand(logsPruneCmd)

	logsCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/trinexa/web.yaml", "Path to configuration file")
}

func openLogStore() (*logsink.Store, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if cfg.LogSink.Path == "" {
		return nil, fmt.Errorf("log sink persistence is not configured (log_sink.path)")
	}
	return logsink.OpenStore(cfg.LogSink.Path)
}

func runLogsDays(cmd *cobra.Command, args []string) error {
	store, err := openLogStore()
	if err != nil {
		return err
	}
	defer store.Close()

	days, err := store.Days()
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("No stored log entries")
		return nil
	}
	for _, day := range days {
		entries, err := store.Day(day)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %d entries\n", day, len(entries))
	}
	return nil
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	day := time.Now().Format(logsink.DayFormat)
	if len(args) == 1 {
		day = args[0]
	}
	if _, err := time.Parse(logsink.DayFormat, day); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", day)
	}

	store, err := openLogStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Day(day)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No entries for %s\n", day)
		return nil
	}
	for _, e := range entries {
		fmt.Printf("[%s] %s: %s\n", e.Timestamp, e.Level, e.Message)
	}
	return nil
}

func runLogsPrune(cmd *cobra.Command, args []string) error {
	if logsPruneDays < 1 {
		return fmt.Errorf("--keep must be at least 1")
	}

	store, err := openLogStore()
	if err != nil {
		return err
	}
	defer store.Close()

	days, err := store.Days()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -logsPruneDays).Format(logsink.DayFormat)
	removed := 0
	for _, day := range days {
		if day < cutoff {
			if err := store.DeleteDay(day); err != nil {
				return err
			}
			removed++
		}
	}

	fmt.Printf("Removed %d day buckets older than %s\n", removed, cutoff)
	return nil
}
