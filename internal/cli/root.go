// Package cli implements deckctl, the offline command line front end. It
// works on presentations kept in a local SQLite key-value file and runs the
// same export pipeline as the server.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"deckpress/internal/kv"
	"deckpress/internal/persist"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DB      string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for deckctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "deckctl",
		Short: "Create, import and export DeckPress presentations offline",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "deckpress.db", "path of the local presentation database")

	cmd.AddCommand(NewFormatsCommand(opts))
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// logger writes diagnostics to stderr so stdout stays parseable.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openRepo opens the SQLite file named by --db. The returned func closes it.
func (o *RootOptions) openRepo() (*persist.Repo, func(), error) {
	store, err := kv.OpenSQLite(o.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database "+o.DB, err)
	}
	return persist.New(store), func() { store.Close() }, nil
}
