package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"housebudget/internal/core"
)

var (
	positive = color.New(color.FgGreen).SprintFunc()
	negative = color.New(color.FgRed).SprintFunc()
	heading  = color.New(color.Bold).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// colorNet renders a month result green when saved and red when overspent.
func colorNet(d decimal.Decimal) string {
	s := core.FormatEuros(d)
	switch {
	case d.IsPositive():
		return positive(s)
	case d.IsNegative():
		return negative(s)
	default:
		return s
	}
}

// share formats part as a percentage of total with one decimal.
func share(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0%"
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

func printRejections(w io.Writer, rejected []core.Rejection) {
	for _, r := range rejected {
		fmt.Fprintf(w, "  skipped %s\n", r)
	}
}

// readInput reads a named file, or the command's stdin for "" and "-".
func readInput(in io.Reader, arg string) ([]byte, error) {
	if arg == "" || arg == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(arg)
}
