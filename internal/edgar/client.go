// Package edgar provides a rate-limited HTTP client for the SEC EDGAR
// filing indexes and document archives. The client fetches and decodes;
// it never interprets filing content and never retries. Failures are
// surfaced as typed errors so the caller can decide whether to back off,
// try another document path, or give up on a filing.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
)

// documentCandidates are the well-known document paths inside a filing
// directory, in priority order: the structured information table, the
// primary XML document, then the legacy full-text submission.
var documentCandidates = []string{
	"infotable.xml",
	"primary_doc.xml",
	"", // replaced with {accession}.txt at call time
}

// Client talks to the EDGAR archive and data endpoints. Every outbound
// request passes through the shared Gate and carries the caller-identifying
// User-Agent header the SEC usage policy requires.
type Client struct {
	baseURL    string // archive host, e.g. https://www.sec.gov
	dataURL    string // data API host, e.g. https://data.sec.gov
	userAgent  string
	gate       Gate
	httpClient *http.Client
}

// NewClient creates an EDGAR client. The base URLs are overridable for tests.
func NewClient(baseURL, dataURL, userAgent string, gate Gate, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if gate == nil {
		gate = NewLimiter(8)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dataURL:    strings.TrimRight(dataURL, "/"),
		userAgent:  userAgent,
		gate:       gate,
		httpClient: httpClient,
	}
}

// FetchDailyIndex fetches the master filing index for one day. A day with
// no published index (weekends, holidays) is an empty result, not an error.
func (c *Client) FetchDailyIndex(ctx context.Context, date time.Time) ([]IndexEntry, error) {
	quarter := (int(date.Month())-1)/3 + 1
	url := fmt.Sprintf("%s/Archives/edgar/daily-index/%d/QTR%d/master.%s.idx",
		c.baseURL, date.Year(), quarter, date.Format("20060102"))

	body, err := c.get(ctx, url)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseMasterIndex(string(body)), nil
}

// FetchFilingsInRange concatenates daily indexes over the inclusive date
// range, filtering by form type. Cost is linear in the number of days.
func (c *Client) FetchFilingsInRange(ctx context.Context, start, end time.Time, formTypes []string) ([]IndexEntry, error) {
	var entries []IndexEntry
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		daily, err := c.FetchDailyIndex(ctx, day)
		if err != nil {
			return nil, err
		}
		for _, entry := range daily {
			if matchesFormType(entry.FormType, formTypes) {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

// FetchFilerFilings returns the most recent filings of the given form type
// for one filer, via the submissions JSON API.
func (c *Client) FetchFilerFilings(ctx context.Context, filerID, formType string, limit int) ([]IndexEntry, error) {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, padCIK(filerID))
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, fmt.Errorf("decoding submissions for CIK %s: %w", filerID, err))
	}

	recent := resp.Filings.Recent

	// The attribute arrays are parallel; a truncated response must not
	// index past the shortest of them.
	n := len(recent.AccessionNumber)
	if len(recent.FilingDate) < n {
		n = len(recent.FilingDate)
	}
	if len(recent.Form) < n {
		n = len(recent.Form)
	}

	var entries []IndexEntry
	for i := 0; i < n; i++ {
		if formType != "" && recent.Form[i] != formType {
			continue
		}
		filed, err := time.Parse("2006-01-02", recent.FilingDate[i])
		if err != nil {
			continue
		}
		fileName := ""
		if i < len(recent.PrimaryDocument) {
			fileName = recent.PrimaryDocument[i]
		}
		entries = append(entries, IndexEntry{
			AccessionNumber: recent.AccessionNumber[i],
			FilerID:         strings.TrimLeft(resp.CIK, "0"),
			FilerName:       resp.Name,
			FormType:        recent.Form[i],
			DateFiled:       filed,
			FileName:        fileName,
		})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// DownloadFilingDocument fetches the raw text of one filing, trying the
// well-known document paths in priority order. A 404 on one path means
// "try the next"; only exhausting every path is a failure.
func (c *Client) DownloadFilingDocument(ctx context.Context, accessionNumber, filerID string) (string, error) {
	cik := strings.TrimLeft(filerID, "0")
	dir := strings.ReplaceAll(accessionNumber, "-", "")

	for _, candidate := range documentCandidates {
		if candidate == "" {
			candidate = accessionNumber + ".txt"
		}
		url := fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", c.baseURL, cik, dir, candidate)
		body, err := c.get(ctx, url)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", err
		}
		return string(body), nil
	}
	return "", apperrors.WithMessage(apperrors.ErrFilingNotFound,
		fmt.Sprintf("no retrievable document for accession %s (CIK %s)", accessionNumber, filerID))
}

// get performs a throttled GET and maps HTTP failures to typed errors.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to read
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("not found: %s", url))
	case resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, fmt.Sprintf("access forbidden: %s", url))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.WithMessage(apperrors.ErrRateLimited, fmt.Sprintf("rate limited: %s", url))
	default:
		return nil, apperrors.Wrap(apperrors.ErrTransport, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, err)
	}
	return body, nil
}

// parseMasterIndex parses the pipe-delimited master index format:
// CIK|Company Name|Form Type|Date Filed|File Name, preceded by a free-form
// header block.
func parseMasterIndex(raw string) []IndexEntry {
	var entries []IndexEntry
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Split(strings.TrimSpace(line), "|")
		if len(fields) != 5 {
			continue
		}
		if !isNumeric(fields[0]) {
			continue // header row
		}
		filed, err := time.Parse("2006-01-02", fields[3])
		if err != nil {
			continue
		}
		entries = append(entries, IndexEntry{
			AccessionNumber: accessionFromFileName(fields[4]),
			FilerID:         fields[0],
			FilerName:       fields[1],
			FormType:        fields[2],
			DateFiled:       filed,
			FileName:        fields[4],
		})
	}
	return entries
}

// accessionFromFileName extracts "0000950123-24-008740" from
// "edgar/data/1067983/0000950123-24-008740.txt".
func accessionFromFileName(fileName string) string {
	return strings.TrimSuffix(path.Base(fileName), ".txt")
}

// padCIK pads a CIK number to 10 digits with leading zeros, the form the
// submissions API expects.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

func matchesFormType(formType string, formTypes []string) bool {
	if len(formTypes) == 0 {
		return true
	}
	for _, ft := range formTypes {
		if strings.EqualFold(formType, ft) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
