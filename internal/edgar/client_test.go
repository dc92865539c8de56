package edgar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prachitbhike/thirteen/internal/testutil"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, serverURL, "test-suite admin@example.com", NopGate{}, nil)
}

func TestFetchDailyIndex(t *testing.T) {
	date := time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC)
	index := testutil.MasterIndex(date,
		[4]string{"1067983", "BERKSHIRE HATHAWAY INC", "13F-HR", "0000950123-24-008740"},
		[4]string{"1364742", "BLACKROCK INC", "10-K", "0001364742-24-000123"},
	)

	var gotPath, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUserAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, index)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.FetchDailyIndex(context.Background(), date)
	testutil.AssertNoError(t, err)

	if gotPath != "/Archives/edgar/daily-index/2024/QTR3/master.20240814.idx" {
		t.Errorf("unexpected index path %q", gotPath)
	}
	if gotUserAgent != "test-suite admin@example.com" {
		t.Errorf("expected identifying User-Agent, got %q", gotUserAgent)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.FilerID != "1067983" {
		t.Errorf("expected filer 1067983, got %q", first.FilerID)
	}
	if first.FilerName != "BERKSHIRE HATHAWAY INC" {
		t.Errorf("unexpected filer name %q", first.FilerName)
	}
	if first.FormType != "13F-HR" {
		t.Errorf("unexpected form type %q", first.FormType)
	}
	if first.AccessionNumber != "0000950123-24-008740" {
		t.Errorf("expected accession extracted from file name, got %q", first.AccessionNumber)
	}
	if !first.DateFiled.Equal(date) {
		t.Errorf("expected date filed %s, got %s", date, first.DateFiled)
	}
}

func TestFetchDailyIndexMissingDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.FetchDailyIndex(context.Background(), time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	if entries != nil {
		t.Errorf("expected empty result for an unpublished day, got %d entries", len(entries))
	}
}

func TestFetchFilingsInRangeFiltersForms(t *testing.T) {
	start := time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "20240814"):
			fmt.Fprint(w, testutil.MasterIndex(start,
				[4]string{"1067983", "BERKSHIRE HATHAWAY INC", "13F-HR", "0000950123-24-008740"},
				[4]string{"1364742", "BLACKROCK INC", "10-K", "0001364742-24-000123"},
			))
		case strings.Contains(r.URL.Path, "20240815"):
			fmt.Fprint(w, testutil.MasterIndex(end,
				[4]string{"1167483", "TWEEDY BROWNE CO LLC", "13F-HR/A", "0001085146-24-001925"},
			))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.FetchFilingsInRange(context.Background(), start, end, []string{"13F-HR", "13F-HR/A"})
	testutil.AssertNoError(t, err)

	if len(entries) != 2 {
		t.Fatalf("expected 2 matching entries across both days, got %d", len(entries))
	}
	if entries[0].FormType != "13F-HR" || entries[1].FormType != "13F-HR/A" {
		t.Errorf("unexpected forms: %q, %q", entries[0].FormType, entries[1].FormType)
	}
}

func TestFetchFilerFilings(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{
			"cik": "0001067983",
			"name": "BERKSHIRE HATHAWAY INC",
			"filings": {"recent": {
				"accessionNumber": ["0000950123-24-008740", "0000950123-24-005555", "0000950123-24-001111"],
				"filingDate": ["2024-08-14", "2024-05-15", "2024-02-14"],
				"reportDate": ["2024-06-30", "2024-03-31", "2023-12-31"],
				"form": ["13F-HR", "10-K", "13F-HR"],
				"primaryDocument": ["primary_doc.xml", "brka-10k.htm", "primary_doc.xml"]
			}}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.FetchFilerFilings(context.Background(), "1067983", "13F-HR", 10)
	testutil.AssertNoError(t, err)

	if gotPath != "/submissions/CIK0001067983.json" {
		t.Errorf("expected zero-padded CIK in path, got %q", gotPath)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 matching filings, got %d", len(entries))
	}
	if entries[0].AccessionNumber != "0000950123-24-008740" {
		t.Errorf("unexpected accession %q", entries[0].AccessionNumber)
	}
	if entries[0].FilerID != "1067983" {
		t.Errorf("expected unpadded filer ID, got %q", entries[0].FilerID)
	}
	if entries[0].FilerName != "BERKSHIRE HATHAWAY INC" {
		t.Errorf("unexpected filer name %q", entries[0].FilerName)
	}

	limited, err := client.FetchFilerFilings(context.Background(), "1067983", "13F-HR", 1)
	testutil.AssertNoError(t, err)
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(limited))
	}
}

func TestFetchFilerFilingsToleratesTruncatedArrays(t *testing.T) {
	// The submissions API returns attributes as parallel arrays; a
	// truncated response must yield the complete prefix, not a panic.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"cik": "0001067983",
			"name": "BERKSHIRE HATHAWAY INC",
			"filings": {"recent": {
				"accessionNumber": ["0000950123-24-008740", "0000950123-24-005555"],
				"filingDate": ["2024-08-14"],
				"form": ["13F-HR"],
				"primaryDocument": []
			}}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.FetchFilerFilings(context.Background(), "1067983", "13F-HR", 10)
	testutil.AssertNoError(t, err)

	if len(entries) != 1 {
		t.Fatalf("expected the complete prefix only, got %d entries", len(entries))
	}
	if entries[0].AccessionNumber != "0000950123-24-008740" {
		t.Errorf("unexpected accession %q", entries[0].AccessionNumber)
	}
	if entries[0].FileName != "" {
		t.Errorf("expected empty file name for missing primary document, got %q", entries[0].FileName)
	}
}

func TestDownloadFilingDocumentFallsBackAcrossPaths(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "0000950123-24-008740.txt") {
			fmt.Fprint(w, "legacy full-text submission")
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	body, err := client.DownloadFilingDocument(context.Background(), "0000950123-24-008740", "0001067983")
	testutil.AssertNoError(t, err)

	if body != "legacy full-text submission" {
		t.Errorf("unexpected body %q", body)
	}
	if len(requested) != 3 {
		t.Fatalf("expected 3 attempts, got %d: %v", len(requested), requested)
	}
	// Leading zeros are stripped from the CIK and dashes from the accession
	// directory.
	want := "/Archives/edgar/data/1067983/000095012324008740/infotable.xml"
	if requested[0] != want {
		t.Errorf("expected first attempt %q, got %q", want, requested[0])
	}
}

func TestDownloadFilingDocumentExhaustsPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.DownloadFilingDocument(context.Background(), "0000950123-24-008740", "1067983")
	testutil.AssertAppError(t, err, "FILING_NOT_FOUND")
}

func TestGetMapsHTTPFailures(t *testing.T) {
	cases := []struct {
		status   int
		wantCode string
	}{
		{http.StatusForbidden, "FORBIDDEN"},
		{http.StatusTooManyRequests, "RATE_LIMITED"},
		{http.StatusInternalServerError, "TRANSPORT"},
	}
	for _, c := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))
		client := newTestClient(server.URL)
		_, err := client.FetchFilerFilings(context.Background(), "1067983", "13F-HR", 1)
		testutil.AssertAppError(t, err, c.wantCode)
		server.Close()
	}
}
