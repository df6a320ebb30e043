package main

import (
	"context"
	"fmt"

	"attendance/pkg/backend"
	"attendance/pkg/config"
	"attendance/pkg/roster"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validFormats = []string{"text", "json", "yaml"}

type rootOptions struct {
	Verbose    bool
	ConfigFile string
	Format     string

	// openService is replaced in tests.
	openService func(ctx context.Context, configFile string) (*roster.Service, func() error, error)
}

func openConfiguredService(ctx context.Context, configFile string) (*roster.Service, func() error, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	table, closeFn, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return backend.NewService(table, cfg), closeFn, nil
}

// withService opens the roster service for the duration of fn.
func (o *rootOptions) withService(cmd *cobra.Command, fn func(svc *roster.Service) error) error {
	svc, closeFn, err := o.openService(cmd.Context(), o.ConfigFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			log.WithError(err).Warn("Failed to close roster table")
		}
	}()
	return fn(svc)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithOptions(&rootOptions{openService: openConfiguredService})
}

func newRootCommandWithOptions(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roster",
		Short:         "Edit the shared attendance roster",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			if opts.Verbose {
				log.SetLevel(log.DebugLevel)
			}
			log.SetFormatter(&log.TextFormatter{
				FullTimestamp: true,
			})
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "roster.toml", "path to the TOML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newToggleCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
