// Package ingest coordinates the end-to-end pipeline: enumerate candidate
// filings via the EDGAR client, process them in bounded-concurrency
// batches (download, parse, resolve reference entities, persist), then
// derive position changes across consecutive periods.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prachitbhike/thirteen/internal/edgar"
	"github.com/prachitbhike/thirteen/internal/models"
	"github.com/prachitbhike/thirteen/internal/parser"
	"github.com/prachitbhike/thirteen/internal/storage"
)

// defaultChangeWindow bounds position-change recomputation to roughly the
// three most recent quarters instead of full history.
const defaultChangeWindow = 270 * 24 * time.Hour

// Client defines the EDGAR operations the orchestrator needs.
type Client interface {
	FetchFilingsInRange(ctx context.Context, start, end time.Time, formTypes []string) ([]edgar.IndexEntry, error)
	FetchFilerFilings(ctx context.Context, filerID, formType string, limit int) ([]edgar.IndexEntry, error)
	DownloadFilingDocument(ctx context.Context, accessionNumber, filerID string) (string, error)
}

// Options controls one ingestion run.
type Options struct {
	// SkipExisting skips filings for which the manager already has a
	// filing on the same filing date. Best-effort dedup: amendments
	// filed on a different date still ingest as separate filings.
	SkipExisting bool

	// MaxConcurrent bounds how many filings are processed at once.
	MaxConcurrent int

	// FormTypes filters index enumeration. Defaults to 13F-HR and its
	// amendment form.
	FormTypes []string

	// FilingsPerFiler caps per-filer enumeration in IngestForFilers.
	FilingsPerFiler int
}

func (o *Options) defaults() {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.FilingsPerFiler <= 0 {
		o.FilingsPerFiler = 4
	}
	if len(o.FormTypes) == 0 {
		o.FormTypes = []string{"13F-HR", "13F-HR/A"}
	}
}

// FilingError records a per-filing failure. The run continues past it.
type FilingError struct {
	AccessionNumber string `json:"accession_number,omitempty"`
	FilerID         string `json:"filer_id,omitempty"`
	Err             error  `json:"-"`
}

// Error implements the error interface.
func (e *FilingError) Error() string {
	if e.AccessionNumber == "" {
		return fmt.Sprintf("filer %s: %v", e.FilerID, e.Err)
	}
	return fmt.Sprintf("filing %s (filer %s): %v", e.AccessionNumber, e.FilerID, e.Err)
}

// RunSummary is the outcome of one ingestion run. Runs never fail past
// their own boundary; callers decide success from the error list.
type RunSummary struct {
	ProcessedFilings  int           `json:"processed_filings"`
	SkippedFilings    int           `json:"skipped_filings"`
	NewHoldings       int           `json:"new_holdings"`
	UpdatedSecurities int           `json:"updated_securities"`
	NewFundManagers   int           `json:"new_fund_managers"`
	PositionChanges   int           `json:"position_changes"`
	Errors            []FilingError `json:"errors,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// Orchestrator drives ingestion runs against a client and a store.
type Orchestrator struct {
	client       Client
	store        storage.Store
	logger       *zap.SugaredLogger
	changeWindow time.Duration
}

// New creates an orchestrator.
func New(client Client, store storage.Store, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		client:       client,
		store:        store,
		logger:       logger,
		changeWindow: defaultChangeWindow,
	}
}

// IngestRange ingests every candidate filing published in the inclusive
// date window.
func (o *Orchestrator) IngestRange(ctx context.Context, start, end time.Time, opts Options) *RunSummary {
	opts.defaults()
	began := time.Now()

	entries, err := o.client.FetchFilingsInRange(ctx, start, end, opts.FormTypes)
	if err != nil {
		return &RunSummary{
			Errors:   []FilingError{{Err: fmt.Errorf("enumerating %s..%s: %w", start.Format("2006-01-02"), end.Format("2006-01-02"), err)}},
			Duration: time.Since(began),
		}
	}

	summary := o.run(ctx, entries, opts)
	summary.Duration = time.Since(began)
	return summary
}

// IngestForFilers ingests the most recent filings for an explicit filer
// set. A filer whose listing cannot be fetched contributes an error and
// the run continues with the rest.
func (o *Orchestrator) IngestForFilers(ctx context.Context, filerIDs []string, opts Options) *RunSummary {
	opts.defaults()
	began := time.Now()

	var entries []edgar.IndexEntry
	var enumErrs []FilingError
	for _, filerID := range filerIDs {
		filings, err := o.client.FetchFilerFilings(ctx, filerID, opts.FormTypes[0], opts.FilingsPerFiler)
		if err != nil {
			enumErrs = append(enumErrs, FilingError{FilerID: filerID, Err: err})
			continue
		}
		entries = append(entries, filings...)
	}

	summary := o.run(ctx, entries, opts)
	summary.Errors = append(enumErrs, summary.Errors...)
	summary.Duration = time.Since(began)
	return summary
}

// Stats reports aggregate dataset statistics.
func (o *Orchestrator) Stats(ctx context.Context) (*storage.Stats, error) {
	return o.store.Stats(ctx)
}

// run processes entries in fixed-size batches of at most MaxConcurrent.
// Every filing in a batch runs concurrently; the next batch starts only
// once the whole batch has finished, successes and failures alike. After
// all batches, one global position-change recomputation pass runs.
func (o *Orchestrator) run(ctx context.Context, entries []edgar.IndexEntry, opts Options) *RunSummary {
	summary := &RunSummary{}
	var mu sync.Mutex

	o.logger.Infow("starting ingestion run",
		"candidates", len(entries),
		"max_concurrent", opts.MaxConcurrent,
		"skip_existing", opts.SkipExisting,
	)

	for batchStart := 0; batchStart < len(entries); batchStart += opts.MaxConcurrent {
		batchEnd := batchStart + opts.MaxConcurrent
		if batchEnd > len(entries) {
			batchEnd = len(entries)
		}

		g := new(errgroup.Group)
		for _, entry := range entries[batchStart:batchEnd] {
			entry := entry
			g.Go(func() error {
				res, err := o.processFiling(ctx, entry, opts)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.Errors = append(summary.Errors, FilingError{
						AccessionNumber: entry.AccessionNumber,
						FilerID:         entry.FilerID,
						Err:             err,
					})
					return nil
				}
				if res.skipped {
					summary.SkippedFilings++
					return nil
				}
				summary.ProcessedFilings++
				summary.NewHoldings += res.newHoldings
				summary.UpdatedSecurities += res.newSecurities
				if res.newFundManager {
					summary.NewFundManagers++
				}
				return nil
			})
		}
		_ = g.Wait() // workers report through the summary, never the group
	}

	changes, changeErrs := o.recomputePositionChanges(ctx)
	summary.PositionChanges = changes
	summary.Errors = append(summary.Errors, changeErrs...)

	o.logger.Infow("ingestion run finished",
		"processed", summary.ProcessedFilings,
		"skipped", summary.SkippedFilings,
		"new_holdings", summary.NewHoldings,
		"errors", len(summary.Errors),
	)
	return summary
}

// filingResult carries the per-filing counters back to the batch loop.
type filingResult struct {
	skipped        bool
	newHoldings    int
	newSecurities  int
	newFundManager bool
}

// processFiling runs the full pipeline for one filing: resolve the fund
// manager, dedup, download, parse, resolve securities, persist the filing
// and its holdings, then recompute the filing's portfolio weights. Any
// failure aborts only this filing.
func (o *Orchestrator) processFiling(ctx context.Context, entry edgar.IndexEntry, opts Options) (*filingResult, error) {
	result := &filingResult{}

	manager, createdManager, err := o.store.UpsertFundManager(ctx, entry.FilerID, entry.FilerName)
	if err != nil {
		return nil, err
	}
	result.newFundManager = createdManager

	if opts.SkipExisting {
		existing, err := o.store.FindFiling(ctx, manager.ID, entry.DateFiled)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			o.logger.Debugw("skipping existing filing",
				"accession", entry.AccessionNumber, "filer", entry.FilerID)
			result.skipped = true
			return result, nil
		}
	}

	raw, err := o.client.DownloadFilingDocument(ctx, entry.AccessionNumber, entry.FilerID)
	if err != nil {
		return nil, err
	}

	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	periodEnd := parsed.Cover.PeriodEnd
	if periodEnd.IsZero() {
		periodEnd = quarterEndBefore(entry.DateFiled)
	}

	filing := &models.Filing{
		FundManagerID:     manager.ID,
		AccessionNumber:   entry.AccessionNumber,
		FilingDate:        entry.DateFiled,
		PeriodEnd:         periodEnd,
		FormType:          entry.FormType,
		DeclaredValue:     parsed.Cover.DeclaredValue * 100, // minor units
		DeclaredPositions: parsed.Cover.DeclaredCount,
		TotalValue:        parsed.Summary.TotalValue * 100,
		TotalPositions:    parsed.Summary.EntryCount,
		SourceURL:         sourceURL(entry),
		ProcessedAt:       time.Now().UTC(),
	}
	if err := o.store.CreateFiling(ctx, filing); err != nil {
		return nil, err
	}

	holdings := make([]*models.Holding, 0, len(parsed.Holdings))
	for _, h := range parsed.Holdings {
		security, createdSecurity, err := o.store.UpsertSecurity(ctx, h.Cusip, h.IssuerName)
		if err != nil {
			return nil, err
		}
		if createdSecurity {
			result.newSecurities++
		}
		holdings = append(holdings, &models.Holding{
			FilingID:      filing.ID,
			FundManagerID: manager.ID,
			SecurityID:    security.ID,
			PeriodEnd:     periodEnd,
			Shares:        h.Shares,
			ShareType:     h.ShareType,
			Value:         h.Value * 100, // minor units
			Discretion:    h.Discretion,
			VotingSole:    h.VotingSole,
			VotingShared:  h.VotingShared,
			VotingNone:    h.VotingNone,
			Source:        string(parsed.Dialect),
		})
	}
	if err := o.store.CreateHoldings(ctx, holdings); err != nil {
		return nil, err
	}
	result.newHoldings = len(holdings)

	if err := o.store.UpdateHoldingPercents(ctx, portfolioWeights(holdings)); err != nil {
		return nil, err
	}

	o.logger.Infow("ingested filing",
		"accession", entry.AccessionNumber,
		"filer", entry.FilerID,
		"holdings", len(holdings),
		"dialect", parsed.Dialect,
	)
	return result, nil
}

// portfolioWeights derives percent-of-portfolio for one filing's holdings
// as value over the sum of all holding values. Never copied from the
// filer's declared totals.
func portfolioWeights(holdings []*models.Holding) []storage.PercentUpdate {
	var total int64
	for _, h := range holdings {
		total += h.Value
	}
	if total == 0 {
		return nil
	}
	updates := make([]storage.PercentUpdate, 0, len(holdings))
	for _, h := range holdings {
		pct := float64(h.Value) / float64(total) * 100
		h.PctOfPortfolio = pct
		updates = append(updates, storage.PercentUpdate{HoldingID: h.ID, Pct: pct})
	}
	return updates
}

// quarterEndBefore returns the last calendar day of the quarter preceding
// d, the reporting period a 13F filed on d most plausibly covers.
func quarterEndBefore(d time.Time) time.Time {
	quarterStartMonth := time.Month((int(d.Month())-1)/3*3 + 1)
	quarterStart := time.Date(d.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return quarterStart.AddDate(0, 0, -1)
}

// sourceURL reconstructs the public archive URL for an index entry.
// Daily-index entries carry a full archive path; submissions-API entries
// only name the primary document, so the path is rebuilt from the
// accession number.
func sourceURL(entry edgar.IndexEntry) string {
	if strings.HasPrefix(entry.FileName, "edgar/") {
		return "https://www.sec.gov/Archives/" + entry.FileName
	}
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s.txt", entry.FilerID, entry.AccessionNumber)
}
