package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"housebudget/internal/core"
	"housebudget/internal/ledger"
)

func (a *App) addCmd() *cobra.Command {
	var c struct {
		bank, month, receiver, category, amount string
	}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one transaction",
		Long: `Record one ledger row. Negative amounts are money spent, positive
amounts money received. Both "12.34" and "12,34" are accepted.

Example:
  hbctl add --bank ING --month 2025-05 --receiver Landlord --category Rent --amount -800`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := core.Candidate{
				core.FieldBankName: c.bank,
				core.FieldMonth:    c.month,
				core.FieldReceiver: c.receiver,
				core.FieldCategory: c.category,
				core.FieldAmount:   c.amount,
			}.Entry()
			if err != nil {
				return err
			}
			tx, err := a.svc.CreateTransaction(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created transaction #%d (%s %s %s)\n",
				tx.ID, tx.Month, tx.Category, core.FormatEuros(tx.Amount))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.bank, "bank", "", "account the row was booked on (required)")
	f.StringVar(&c.month, "month", "", "month as YYYY-MM (required)")
	f.StringVar(&c.receiver, "receiver", "", "counterparty (required)")
	f.StringVar(&c.category, "category", "", "category label (required)")
	f.StringVar(&c.amount, "amount", "", "signed amount (required)")
	for _, name := range []string{"bank", "month", "receiver", "category", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var (
		all   bool
		month string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with their derived type",
		Long: `List ledger rows in insertion order. Transfers are hidden unless --all
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" {
				if _, err := core.ParseMonth(month); err != nil {
					return err
				}
			}
			txs, err := a.svc.Transactions(cmd.Context(), all)
			if err != nil {
				return err
			}
			if month != "" {
				txs = ledger.InMonth(txs, strings.TrimSpace(month))
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			row(w, heading("ID"), heading("MONTH"), heading("BANK"), heading("RECEIVER"), heading("CATEGORY"), heading("AMOUNT"), heading("TYPE"))
			for _, tx := range txs {
				row(w, strconv.FormatInt(tx.ID, 10), tx.Month, tx.BankName, tx.Receiver, tx.Category, core.FormatEuros(tx.Amount), tx.Type.String())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include transfers")
	cmd.Flags().StringVar(&month, "month", "", "only rows of this month (YYYY-MM)")
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			if err := a.svc.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction #%d\n", id)
			return nil
		},
	}
}
