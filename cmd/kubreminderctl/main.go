package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ilyalavrinov/kubreminder/internal/kubreminder/lessons"
)

type globalFlags struct {
	file     string
	timezone string
	verbose  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "kubreminderctl",
		Short: "Edit the lesson file of the reminder bot offline",
		Long: `kubreminderctl lists, adds and deletes lessons in the JSON file used by the
reminder bot. A running bot with [reminder] watchfile enabled picks up the changes.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if flags.verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.file, "file", "f", envOr("LESSONS_FILE", "lessons.json"), "lesson file")
	rootCmd.PersistentFlags().StringVar(&flags.timezone, "timezone", envOr("KUBREMINDER_TIMEZONE", "Asia/Tbilisi"), "timezone lessons are scheduled in")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(newListCommand(flags))
	rootCmd.AddCommand(newAddCommand(flags))
	rootCmd.AddCommand(newDeleteCommand(flags))
	rootCmd.AddCommand(newExportCommand(flags))
	return rootCmd
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func (f *globalFlags) openStore(ctx context.Context) (*lessons.Store, error) {
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", f.timezone, err)
	}
	// a broken file must not be overwritten by the first mutation
	storage := lessons.NewFileStorage(f.file)
	if _, err := storage.Load(ctx); err != nil && !errors.Is(err, lessons.ErrBlankStorage) {
		return nil, fmt.Errorf("cannot read %q: %w", f.file, err)
	}
	return lessons.NewStore(ctx, storage, loc), nil
}
