package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sourceOf(flag, arg string) string {
	switch {
	case flag != "":
		return flag
	case arg == "" || arg == "-":
		return "stdin"
	default:
		return arg
	}
}

func (a *App) extractCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract ledger rows from statement text and store them",
		Long: `Send statement text to the extraction assistant and import the rows it
returns. Reads stdin when no file is given. Requires OPENAI_API_KEY.

Example:
  pdftotext may.pdf - | hbctl extract --source may.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := firstArg(args)
			text, err := readInput(cmd.InOrStdin(), arg)
			if err != nil {
				return err
			}
			report, err := a.svc.ExtractStatement(cmd.Context(), sourceOf(source, arg), string(text))
			if err != nil {
				return err
			}
			a.printReport(cmd, report, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "label stored with the import (defaults to the file name)")
	return cmd
}

func (a *App) submitCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "submit [file|-]",
		Short: "Queue statement text for the extraction worker",
		Long: `Publish statement text to the AMQP queue consumed by housebudget-worker.
Requires AMQP_URL.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationQueue: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := firstArg(args)
			text, err := readInput(cmd.InOrStdin(), arg)
			if err != nil {
				return err
			}
			jobID, err := a.svc.SubmitStatement(cmd.Context(), sourceOf(source, arg), string(text))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s\n", jobID)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "label stored with the import (defaults to the file name)")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
