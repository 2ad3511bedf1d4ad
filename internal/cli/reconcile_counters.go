package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// ReconcileCountersCommand recomputes the stored shelf counters of the sqlite
// store from the shelf entries and corrects any that drifted.
type ReconcileCountersCommand struct {
	DatabasePath string
	OwnerID      string
	Verbose      bool

	Out io.Writer
}

// NewReconcileCountersCommand creates a new ReconcileCountersCommand
func NewReconcileCountersCommand() *ReconcileCountersCommand {
	return &ReconcileCountersCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ReconcileCountersCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reconcile-counters", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "./bookshelf.db", "Path to the sqlite database file")
	fs.StringVar(&cmd.OwnerID, "owner", "", "Only reconcile this user's counters (default: every user)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reconcile-counters [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recompute shelf counters from the shelf entries and fix drifted ones.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s reconcile-counters -db ./bookshelf.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s reconcile-counters -db ./bookshelf.db -owner u123\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the reconciliation synchronously.
func (cmd *ReconcileCountersCommand) Run(ctx context.Context) error {
	if _, err := os.Stat(cmd.DatabasePath); err != nil {
		return fmt.Errorf("database %s: %w", cmd.DatabasePath, err)
	}

	mode := "production"
	if cmd.Verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, err := database.NewDatabase(cmd.DatabasePath, "silent")
	if err != nil {
		return err
	}
	defer db.Close()

	repo := shelves.NewRepository(db.DB)
	svc := library.NewService(library.Config{Store: repo, Counters: repo, Logger: log})

	drifts, err := svc.ReconcileCounters(ctx, cmd.OwnerID)
	if err != nil {
		return err
	}

	if len(drifts) == 0 {
		fmt.Fprintln(cmd.Out, "All shelf counters are up to date.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER\tSHELF\tSTORED\tACTUAL")
	for _, d := range drifts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", d.OwnerID, d.Shelf, d.Stored, d.Actual)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Out, "Corrected %d counter(s).\n", len(drifts))
	return nil
}
