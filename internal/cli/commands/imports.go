package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"housebudget/internal/services"
)

const sheetSource = "google-sheets"

// printReport summarises an import. A failed import that stored nothing
// prints nothing; the error says enough.
func (a *App) printReport(cmd *cobra.Command, report services.ImportReport, err error) {
	if err != nil && report.Accepted() == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s (%d rejected)\n",
		report.Accepted(), report.Source, len(report.Rejected))
	printRejections(cmd.ErrOrStderr(), report.Rejected)
}

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import ledger rows from a file or a spreadsheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "file <path>",
		Short: "Import a YAML or JSON ledger file",
		Long: `Import a YAML or JSON document holding a list of rows, or a mapping with a
"transactions" list. Invalid rows are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.svc.ImportFile(cmd.Context(), args[0])
			a.printReport(cmd, report, err)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sheet",
		Short: "Import rows from the configured Google spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheets, err := a.openSheets(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			candidates, err := sheets.FetchCandidates(cmd.Context())
			if err != nil {
				return err
			}
			report, err := a.svc.Import(cmd.Context(), sheetSource, candidates)
			a.printReport(cmd, report, err)
			return err
		},
	})
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the classified ledger",
	}

	var all bool
	sheet := &cobra.Command{
		Use:   "sheet",
		Short: "Replace the configured Google sheet with the classified ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheets, err := a.openSheets(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			txs, err := a.svc.Transactions(cmd.Context(), all)
			if err != nil {
				return err
			}
			if err := sheets.Export(cmd.Context(), txs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows\n", len(txs))
			return nil
		},
	}
	sheet.Flags().BoolVar(&all, "all", false, "include transfers")
	cmd.AddCommand(sheet)
	return cmd
}
