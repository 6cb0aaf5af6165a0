package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/config"
	"github.com/abhisek/tutor/internal/lessons"
	"github.com/abhisek/tutor/internal/spacedrep"
	"github.com/abhisek/tutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "tutor",
	Short:         "Lesson progress tracker and spaced-repetition flashcards",
	Long:          "tutor tracks progress through structured lessons and schedules flashcard reviews with SM-2.",
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTOR_DB env var)")
	rootCmd.PersistentFlags().String("store", "", "Storage backend: sqlite, redis, postgres or memory (overrides TUTOR_STORE)")

	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment, then applies the --store and --db flags.
// The database path resolves as --db, then TUTOR_DB, then the XDG default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if s, _ := cmd.Flags().GetString("store"); s != "" {
		cfg.Store = s
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// openKV opens the configured backend. Callers must close the returned closer.
func openKV(cmd *cobra.Command) (store.KV, io.Closer, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	kv, closer, err := config.OpenKV(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return kv, closer, cfg, nil
}

// withTracker runs fn against a lesson tracker on the configured store.
func withTracker(cmd *cobra.Command, fn func(t *lessons.Tracker) error) error {
	kv, closer, _, err := openKV(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(lessons.NewTracker(cmd.Context(), kv))
}

// withScheduler runs fn against a flashcard scheduler on the configured store.
func withScheduler(cmd *cobra.Command, fn func(s *spacedrep.Scheduler, cfg *config.Config) error) error {
	kv, closer, cfg, err := openKV(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(spacedrep.NewScheduler(cmd.Context(), kv), cfg)
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints v, or fails with notFound when v is a nil pointer.
func printResult[T any](cmd *cobra.Command, v *T, notFound string) error {
	if v == nil {
		return fmt.Errorf("%s not found", notFound)
	}
	return printJSON(cmd, v)
}
