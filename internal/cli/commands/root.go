// Package commands implements the hbctl command tree.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"housebudget/internal/cli"
	"housebudget/internal/config"
	"housebudget/internal/core"
	applog "housebudget/internal/log"
	"housebudget/internal/services"
)

// annotationQueue marks commands that need the AMQP publisher.
const annotationQueue = "housebudget/queue"

// SheetsClient is the spreadsheet side of import and export.
type SheetsClient interface {
	FetchCandidates(ctx context.Context) ([]core.Candidate, error)
	Export(ctx context.Context, rows []core.Classified) error
}

type (
	LedgerOpener func(ctx context.Context, logger *applog.Logger, cfg *config.Config, opts cli.ServiceOptions) (*services.LedgerService, error)
	SheetsOpener func(ctx context.Context, cfg *config.Config) (SheetsClient, error)
)

// App holds the state shared by every subcommand of one invocation.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	openLedger LedgerOpener
	openSheets SheetsOpener

	envFile  string
	logLevel string
	backend  string
	noColor  bool

	cfg    *config.Config
	logger *applog.Logger
	svc    *services.LedgerService
}

type AppOption func(*App)

func WithIO(in io.Reader, out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

func WithLedgerOpener(fn LedgerOpener) AppOption {
	return func(a *App) { a.openLedger = fn }
}

func WithSheetsOpener(fn SheetsOpener) AppOption {
	return func(a *App) { a.openSheets = fn }
}

func NewApp(opts ...AppOption) *App {
	a := &App{
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		openLedger: cli.InitLedgerService,
		openSheets: func(ctx context.Context, cfg *config.Config) (SheetsClient, error) {
			return cli.NewSheetsClient(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs hbctl with args and releases the ledger afterwards.
func Execute(ctx context.Context, args []string, opts ...AppOption) error {
	app := NewApp(opts...)
	root := app.Command()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	return err
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "hbctl",
		Short: "Inspect and maintain the household ledger",
		Long: `hbctl works on the same ledger as the housebudget server.

Transfers between the household's own accounts are detected automatically
and left out of income, expenses and breakdowns.

Example:
  hbctl add --bank ING --month 2025-05 --receiver Market --category Food --amount -23.40
  hbctl summary
  hbctl breakdown --month 2025-05 --kind expense
  hbctl import file statements/may.yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	flags.StringVar(&a.backend, "backend", "", "override DATA_BACKEND (memory|sqlite|bolt)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.deleteCmd(),
		a.monthsCmd(),
		a.summaryCmd(),
		a.breakdownCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.extractCmd(),
		a.submitCmd(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor {
		color.NoColor = true
	}
	cli.LoadEnvFile(a.envFile)

	logger, err := cli.SetupLogger(a.logLevel, a.errOut)
	if err != nil {
		return err
	}
	a.logger = logger

	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	svc, err := a.openLedger(cmd.Context(), logger, cfg, cli.ServiceOptions{
		Queue:      cmd.Annotations[annotationQueue] == "true",
		Extraction: true,
	})
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// Close releases the ledger service if one was opened.
func (a *App) Close() error {
	if a.svc == nil {
		return nil
	}
	err := a.svc.Close()
	a.svc = nil
	return err
}
