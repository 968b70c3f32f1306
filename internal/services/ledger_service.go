package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"housebudget/internal/amqp"
	"housebudget/internal/cache"
	"housebudget/internal/core"
	"housebudget/internal/extract"
	"housebudget/internal/ledger"
	"housebudget/internal/loader"
	applog "housebudget/internal/log"
	"housebudget/internal/store"
)

var (
	ErrQueueUnavailable   = errors.New("statement queue not configured")
	ErrExtractionDisabled = errors.New("statement extraction not configured")
	ErrUnknownBreakdown   = errors.New("unknown breakdown kind (expected expense or income)")
)

// BreakdownKind selects which side of a month is bucketed.
type BreakdownKind string

const (
	BreakdownExpense BreakdownKind = "expense"
	BreakdownIncome  BreakdownKind = "income"
)

func ParseBreakdownKind(s string) (BreakdownKind, error) {
	switch BreakdownKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", BreakdownExpense:
		return BreakdownExpense, nil
	case BreakdownIncome:
		return BreakdownIncome, nil
	default:
		return "", ErrUnknownBreakdown
	}
}

// Publisher hands statement jobs to the extraction worker.
type Publisher interface {
	PublishExtraction(ctx context.Context, msg *amqp.ExtractionMessage) error
}

// ImportReport summarises a batch that went through validation and storage.
type ImportReport struct {
	Source   string           `json:"source"`
	IDs      []int64          `json:"ids"`
	Rejected []core.Rejection `json:"rejected"`
}

func (r ImportReport) Accepted() int { return len(r.IDs) }

// LedgerService reads the full ledger from the store on every query and
// derives classification, summaries and buckets from it.
type LedgerService struct {
	store     store.Store
	publisher Publisher
	extractor extract.Extractor
	threshold float64
	now       func() time.Time
	closers   []func() error

	// submitted maps a statement fingerprint to the job already queued for it.
	submitted cache.Cache[string]
}

type Option func(*LedgerService)

// WithPublisher enables SubmitStatement
func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithExtractor enables ExtractStatement
func WithExtractor(e extract.Extractor) Option {
	return func(s *LedgerService) { s.extractor = e }
}

func WithThreshold(t float64) Option {
	return func(s *LedgerService) { s.threshold = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithSubmissionDedup makes SubmitStatement return the existing job id when
// the same source and text are submitted again while c still holds them.
func WithSubmissionDedup(c cache.Cache[string]) Option {
	return func(s *LedgerService) { s.submitted = c }
}

// WithCloser registers a cleanup run by Close, in registration order.
func WithCloser(fn func() error) Option {
	return func(s *LedgerService) {
		if fn != nil {
			s.closers = append(s.closers, fn)
		}
	}
}

func NewLedgerService(st store.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     st,
		threshold: ledger.DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold is the bucket threshold used when a caller does not pick one.
func (s *LedgerService) Threshold() float64 { return s.threshold }

func (s *LedgerService) QueueEnabled() bool { return s.publisher != nil }

func (s *LedgerService) CreateTransaction(ctx context.Context, e core.Entry) (core.Transaction, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Transaction{}, err
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogTransactionCreated(ctx, id, e.BankName, e.Month, e.Category, e.Amount.String())
	return core.Transaction{ID: id, Entry: e}, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (s *LedgerService) classified(ctx context.Context) ([]core.Transaction, []core.Classified, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, ledger.Classify(txs), nil
}

// Transactions returns the classified ledger in store order. Transfers are
// hidden unless includeTransfers is set.
func (s *LedgerService) Transactions(ctx context.Context, includeTransfers bool) ([]core.Classified, error) {
	_, classified, err := s.classified(ctx)
	if err != nil {
		return nil, err
	}
	if !includeTransfers {
		classified = ledger.WithoutTransfers(classified)
	}
	return classified, nil
}

// Months returns the available months (most recent first) and the one a
// viewer should start on.
func (s *LedgerService) Months(ctx context.Context) ([]string, string, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	months := ledger.AvailableMonths(txs)
	return months, ledger.DefaultMonth(months, s.now()), nil
}

// Summary returns the totals of month. A month without rows yields zeros.
func (s *LedgerService) Summary(ctx context.Context, month string) (core.MonthlySummary, error) {
	if _, err := core.ParseMonth(month); err != nil {
		return core.MonthlySummary{}, err
	}
	_, classified, err := s.classified(ctx)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return ledger.MonthlySummary(classified, strings.TrimSpace(month)), nil
}

func (s *LedgerService) Summaries(ctx context.Context) ([]core.MonthlySummary, error) {
	_, classified, err := s.classified(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.SummarizeMonths(ctx, classified)
}

// Breakdown buckets one side of month by category. The expense side
// includes the synthetic Savings row; the income side uses no threshold.
func (s *LedgerService) Breakdown(ctx context.Context, month string, kind BreakdownKind, threshold float64) ([]core.Bucket, error) {
	if _, err := core.ParseMonth(month); err != nil {
		return nil, err
	}
	_, classified, err := s.classified(ctx)
	if err != nil {
		return nil, err
	}
	month = strings.TrimSpace(month)
	switch kind {
	case BreakdownExpense:
		return ledger.ExpenseBreakdown(classified, month, threshold), nil
	case BreakdownIncome:
		return ledger.IncomeBreakdown(classified, month), nil
	default:
		return nil, ErrUnknownBreakdown
	}
}

// Import validates a candidate batch and stores every accepted row.
// Invalid candidates are reported and skipped. A store failure stops the
// batch and deletes the rows it already stored, so a retried batch does not
// duplicate them. Rows that could not be deleted stay listed in the report.
func (s *LedgerService) Import(ctx context.Context, source string, batch []core.Candidate) (ImportReport, error) {
	accepted, rejected := core.ValidateCandidates(batch)
	return s.storeBatch(ctx, source, accepted, rejected)
}

// ImportFile loads a YAML or JSON ledger file and stores its valid rows.
func (s *LedgerService) ImportFile(ctx context.Context, path string) (ImportReport, error) {
	res, err := loader.LoadFile(path)
	if err != nil {
		return ImportReport{Source: path}, err
	}
	return s.storeBatch(ctx, path, res.Accepted, res.Rejected)
}

func (s *LedgerService) storeBatch(ctx context.Context, source string, accepted []core.Entry, rejected []core.Rejection) (ImportReport, error) {
	report := ImportReport{Source: source, IDs: make([]int64, 0, len(accepted)), Rejected: rejected}
	for _, r := range rejected {
		slog.WarnContext(ctx, "Candidate rejected", "source", source, "index", r.Index, "reason", r.Reason)
	}
	for _, e := range accepted {
		id, err := s.store.Create(ctx, e)
		if err != nil {
			err = fmt.Errorf("store %s row: %w", source, err)
			report.IDs, err = s.rollback(ctx, source, report.IDs, err)
			return report, err
		}
		report.IDs = append(report.IDs, id)
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogBatch(ctx, applog.ComponentLedger, source, report.Accepted(), len(report.Rejected))
	return report, nil
}

// rollback deletes the rows of a failed batch. It returns the ids that are
// still stored, with their delete errors joined to cause.
func (s *LedgerService) rollback(ctx context.Context, source string, ids []int64, cause error) ([]int64, error) {
	ctx = context.WithoutCancel(ctx)
	var left []int64
	errs := []error{cause}
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			left = append(left, id)
			errs = append(errs, fmt.Errorf("roll back row %d: %w", id, err))
		}
	}
	if len(left) > 0 {
		slog.ErrorContext(ctx, "Partial batch left in store", "source", source, "ids", left)
		return left, errors.Join(errs...)
	}
	slog.WarnContext(ctx, "Batch rolled back", "source", source, "rows", len(ids))
	return nil, cause
}

// ExtractStatement runs the assistant synchronously and imports its output.
func (s *LedgerService) ExtractStatement(ctx context.Context, source, text string) (ImportReport, error) {
	if s.extractor == nil {
		return ImportReport{Source: source}, ErrExtractionDisabled
	}
	candidates, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return ImportReport{Source: source}, fmt.Errorf("extract statement: %w", err)
	}
	return s.Import(ctx, source, candidates)
}

// SubmitStatement queues text for the extraction worker and returns the job id.
func (s *LedgerService) SubmitStatement(ctx context.Context, source, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", amqp.ErrEmptyStatement
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, statement not queued", "source", source)
		return "", ErrQueueUnavailable
	}
	key := fingerprint(source, text)
	if s.submitted != nil {
		if jobID, ok := s.submitted.Get(key); ok {
			slog.InfoContext(ctx, "Duplicate statement submission", "source", source, "job_id", jobID)
			return jobID, nil
		}
	}
	msg := amqp.NewExtractionMessage(source, text)
	if err := s.publisher.PublishExtraction(ctx, msg); err != nil {
		return "", fmt.Errorf("queue statement: %w", err)
	}
	if s.submitted != nil {
		s.submitted.Set(key, msg.JobID)
	}
	return msg.JobID, nil
}

func fingerprint(source, text string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Close releases the store and any registered resources.
func (s *LedgerService) Close() error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
