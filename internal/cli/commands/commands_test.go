package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"housebudget/internal/amqp"
	"housebudget/internal/cli"
	"housebudget/internal/config"
	"housebudget/internal/core"
	applog "housebudget/internal/log"
	"housebudget/internal/services"
	"housebudget/internal/store/memory"
)

type fakeSheets struct {
	rows     []core.Candidate
	exported []core.Classified
}

func (f *fakeSheets) FetchCandidates(context.Context) ([]core.Candidate, error) { return f.rows, nil }

func (f *fakeSheets) Export(_ context.Context, rows []core.Classified) error {
	f.exported = rows
	return nil
}

type fakePublisher struct{ msgs []*amqp.ExtractionMessage }

func (f *fakePublisher) PublishExtraction(_ context.Context, msg *amqp.ExtractionMessage) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakeExtractor struct{ out []core.Candidate }

func (f fakeExtractor) Extract(context.Context, string) ([]core.Candidate, error) { return f.out, nil }

type harness struct {
	t      *testing.T
	svc    *services.LedgerService
	sheets *fakeSheets
	opts   cli.ServiceOptions
}

func newHarness(t *testing.T, opts ...services.Option) *harness {
	t.Helper()
	for k, v := range map[string]string{
		"DATA_BACKEND":                   "memory",
		"LOG_LEVEL":                      "info",
		"AMQP_URL":                       "",
		"GOOGLE_SPREADSHEET_ID":          "",
		"GOOGLE_SERVICE_ACCOUNT_FILE":    "",
		"GOOGLE_APPLICATION_CREDENTIALS": "",
		"OPENAI_BASE_URL":                "",
		"BUCKET_THRESHOLD":               "",
		"PORT":                           "",
	} {
		t.Setenv(k, v)
	}
	clock := func() time.Time { return time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC) }
	opts = append([]services.Option{services.WithClock(clock)}, opts...)
	return &harness{
		t:      t,
		svc:    services.NewLedgerService(memory.New(), opts...),
		sheets: &fakeSheets{},
	}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithLedgerOpener(func(_ context.Context, _ *applog.Logger, _ *config.Config, opts cli.ServiceOptions) (*services.LedgerService, error) {
			h.opts = opts
			return h.svc, nil
		}),
		WithSheetsOpener(func(context.Context, *config.Config) (SheetsClient, error) {
			return h.sheets, nil
		}),
	)
	cmd := app.Command()
	env := filepath.Join(h.t.TempDir(), "missing.env")
	cmd.SetArgs(append([]string{"--no-color", "--env-file", env}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	if err != nil {
		h.t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func (h *harness) seed() {
	h.t.Helper()
	for _, r := range [][]string{
		{"ING", "2025-05", "Employer", "Salary", "2000"},
		{"ING", "2025-05", "Landlord", "Rent", "-800"},
		{"ING", "2025-05", "Market", "Food", "-1200"},
		{"ING", "2025-05", "Revolut", "Transfer", "-300"},
		{"Revolut", "2025-05", "ING", "Transfer", "300"},
		{"ING", "2025-04", "Employer", "Salary", "1000"},
	} {
		h.mustRun("add", "--bank", r[0], "--month", r[1], "--receiver", r[2], "--category", r[3], "--amount", r[4])
	}
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "--bank", "ING", "--month", "2025-05", "--receiver", "Market", "--category", "Food", "--amount", "-12,50")
	if !strings.Contains(out, "Created transaction #1") || !strings.Contains(out, "-€12,50") {
		t.Fatalf("add output: %q", out)
	}

	if _, _, err := h.run("", "add", "--bank", "ING", "--month", "May", "--receiver", "x", "--category", "y", "--amount", "1"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, _, err := h.run("", "add", "--bank", "ING"); err == nil {
		t.Fatal("missing required flags should fail")
	}

	h.seed()
	out = h.mustRun("list")
	if strings.Contains(out, "Transfer\n") || strings.Count(out, "\n") != 6 {
		t.Fatalf("list should hide transfers:\n%s", out)
	}
	out = h.mustRun("list", "--all", "--month", "2025-05")
	if strings.Count(out, "Transfer") < 2 {
		t.Fatalf("list --all should show the transfer pair:\n%s", out)
	}
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	h.seed()

	if out := h.mustRun("delete", "2"); !strings.Contains(out, "Deleted transaction #2") {
		t.Fatalf("delete output %q", out)
	}
	if _, _, err := h.run("", "delete", "2"); err == nil {
		t.Fatal("deleting twice should fail")
	}
	if _, _, err := h.run("", "delete", "x"); err == nil {
		t.Fatal("non-numeric id should fail")
	}
}

func TestMonthsAndSummary(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("months"); !strings.Contains(out, "No months.") {
		t.Fatalf("empty months output %q", out)
	}

	h.seed()
	out := h.mustRun("months")
	if out != "* 2025-05\n  2025-04\n" {
		t.Fatalf("months output %q", out)
	}

	out = h.mustRun("summary")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two months:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "2025-05") || !strings.Contains(lines[1], "€2000,00") || !strings.Contains(lines[1], "-€2000,00") || !strings.HasSuffix(lines[1], "€0,00") {
		t.Fatalf("2025-05 row: %q", lines[1])
	}

	out = h.mustRun("summary", "--month", "2025-04")
	if !strings.Contains(out, "€1000,00") {
		t.Fatalf("single month summary:\n%s", out)
	}
}

func TestBreakdown(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("breakdown")
	if !strings.Contains(out, "expense breakdown for 2025-05") {
		t.Fatalf("breakdown header:\n%s", out)
	}
	for _, want := range []string{"Food", "€1200,00", "60.0%", "Rent", "40.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("breakdown missing %q:\n%s", want, out)
		}
	}

	out = h.mustRun("breakdown", "--kind", "income", "--month", "2025-04")
	if !strings.Contains(out, "Salary") || !strings.Contains(out, "100.0%") {
		t.Fatalf("income breakdown:\n%s", out)
	}

	if _, _, err := h.run("", "breakdown", "--kind", "assets"); !errors.Is(err, services.ErrUnknownBreakdown) {
		t.Fatalf("expected ErrUnknownBreakdown, got %v", err)
	}
	if _, _, err := h.run("", "breakdown", "--threshold", "1.2"); err == nil {
		t.Fatal("threshold >= 1 should fail")
	}
}

func TestImportFileAndSheet(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "may.yaml")
	doc := `transactions:
  - {bank_name: ING, month: "2025-05", receiver: Market, category: Food, amount: -20}
  - {bank_name: ING, month: "2025-05", receiver: Market}
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	out, errOut, err := h.run("", "import", "file", path)
	if err != nil {
		t.Fatalf("import file: %v", err)
	}
	if !strings.Contains(out, "Imported 1 rows") || !strings.Contains(out, "(1 rejected)") {
		t.Fatalf("import output %q", out)
	}
	if !strings.Contains(errOut, "skipped record 1") {
		t.Fatalf("rejection not reported: %q", errOut)
	}

	h.sheets.rows = []core.Candidate{
		{"bank_name": "ING", "month": "2025-05", "receiver": "Employer", "category": "Salary", "amount": "1500"},
	}
	out = h.mustRun("import", "sheet")
	if !strings.Contains(out, "Imported 1 rows from google-sheets") {
		t.Fatalf("sheet import output %q", out)
	}

	out = h.mustRun("export", "sheet")
	if !strings.Contains(out, "Exported 2 rows") || len(h.sheets.exported) != 2 {
		t.Fatalf("export output %q, exported %d", out, len(h.sheets.exported))
	}
}

func TestExtractAndSubmit(t *testing.T) {
	pub := &fakePublisher{}
	h := newHarness(t,
		services.WithPublisher(pub),
		services.WithExtractor(fakeExtractor{out: []core.Candidate{
			{"bank_name": "ING", "month": "2025-03", "receiver": "Market", "category": "Food", "amount": "-9.99"},
		}}))

	out, _, err := h.run("statement text", "extract", "--source", "march.pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "Imported 1 rows from march.pdf") {
		t.Fatalf("extract output %q", out)
	}
	if h.opts.Queue {
		t.Fatal("extract must not request the queue")
	}

	out, _, err = h.run("statement text", "submit")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !h.opts.Queue {
		t.Fatal("submit should request the queue")
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Source != "stdin" || !strings.Contains(out, pub.msgs[0].JobID) {
		t.Fatalf("submit output %q, published %+v", out, pub.msgs)
	}
}

func TestSubmitWithoutQueue(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run("text", "submit"); !errors.Is(err, services.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
}
