package parser

import (
	"testing"
	"time"

	"github.com/prachitbhike/thirteen/internal/testutil"
)

func TestParseXML(t *testing.T) {
	raw := testutil.XMLFiling("06-30-2024",
		testutil.FixtureHolding{Cusip: "037833100", Issuer: "APPLE INC", Class: "COM", Value: 17400000, Shares: 400000000},
		testutil.FixtureHolding{Cusip: "059428107", Issuer: "BANCO BRADESCO", Class: "ADR", Value: 4100000, Shares: 120000000},
	)

	filing, err := Parse(raw)
	testutil.AssertNoError(t, err)

	if filing.Dialect != DialectXML {
		t.Errorf("expected dialect %q, got %q", DialectXML, filing.Dialect)
	}
	if len(filing.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(filing.Holdings))
	}

	apple := filing.Holdings[0]
	if apple.Cusip != "037833100" {
		t.Errorf("expected CUSIP 037833100, got %q", apple.Cusip)
	}
	if apple.IssuerName != "APPLE INC" {
		t.Errorf("expected issuer APPLE INC, got %q", apple.IssuerName)
	}
	// Filers state values in thousands; the canonical value is whole units.
	if apple.Value != 17_400_000_000 {
		t.Errorf("expected value 17400000000, got %d", apple.Value)
	}
	if apple.Shares != 400_000_000 {
		t.Errorf("expected 400000000 shares, got %d", apple.Shares)
	}
	if apple.ShareType != "SH" {
		t.Errorf("expected share type SH, got %q", apple.ShareType)
	}
	if apple.Discretion != "SOLE" {
		t.Errorf("expected discretion SOLE, got %q", apple.Discretion)
	}
	if apple.VotingSole != 400_000_000 {
		t.Errorf("expected sole voting 400000000, got %d", apple.VotingSole)
	}

	wantPeriod := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if !filing.Cover.PeriodEnd.Equal(wantPeriod) {
		t.Errorf("expected period end %s, got %s", wantPeriod, filing.Cover.PeriodEnd)
	}
	if filing.Cover.FilerName != "Test Capital Management" {
		t.Errorf("expected filer name from cover page, got %q", filing.Cover.FilerName)
	}

	if filing.Summary.EntryCount != 2 {
		t.Errorf("expected recomputed entry count 2, got %d", filing.Summary.EntryCount)
	}
	if filing.Summary.TotalValue != 21_500_000_000 {
		t.Errorf("expected recomputed total 21500000000, got %d", filing.Summary.TotalValue)
	}
}

func TestParseXMLDropsInvalidCusipRows(t *testing.T) {
	raw := testutil.XMLFiling("06-30-2024",
		testutil.FixtureHolding{Cusip: "037833100", Issuer: "APPLE INC", Class: "COM", Value: 1000, Shares: 100},
		testutil.FixtureHolding{Cusip: "BADCUSIP", Issuer: "MALFORMED CO", Class: "COM", Value: 2000, Shares: 200},
		testutil.FixtureHolding{Cusip: "88160R101", Issuer: "TESLA INC", Class: "COM", Value: 3000, Shares: 300},
	)

	filing, err := Parse(raw)
	testutil.AssertNoError(t, err)

	if len(filing.Holdings) != 2 {
		t.Fatalf("expected malformed row dropped, got %d holdings", len(filing.Holdings))
	}
	if filing.Holdings[0].Cusip != "037833100" || filing.Holdings[1].Cusip != "88160R101" {
		t.Errorf("unexpected surviving holdings: %+v", filing.Holdings)
	}
	if filing.Summary.TotalValue != 4_000_000 {
		t.Errorf("expected summary over surviving rows only, got %d", filing.Summary.TotalValue)
	}
}

func TestParseXMLWithoutHoldings(t *testing.T) {
	raw := testutil.XMLFiling("06-30-2024")
	_, err := Parse(raw)
	testutil.AssertAppError(t, err, "NO_INFORMATION_TABLE")
}

func TestParseHTML(t *testing.T) {
	raw := testutil.HTMLFiling(
		testutil.FixtureHolding{Cusip: "037833100", Issuer: "APPLE INC", Class: "COM", Value: 12345, Shares: 54321},
		testutil.FixtureHolding{Cusip: "594918104", Issuer: "MICROSOFT CORP", Class: "COM", Value: 9876, Shares: 4321},
	)

	filing, err := Parse(raw)
	testutil.AssertNoError(t, err)

	if filing.Dialect != DialectHTML {
		t.Errorf("expected dialect %q, got %q", DialectHTML, filing.Dialect)
	}
	if len(filing.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(filing.Holdings))
	}

	apple := filing.Holdings[0]
	if apple.Cusip != "037833100" {
		t.Errorf("expected CUSIP 037833100, got %q", apple.Cusip)
	}
	// 12,345 thousand becomes 12,345,000 whole units.
	if apple.Value != 12_345_000 {
		t.Errorf("expected value 12345000, got %d", apple.Value)
	}
	if apple.Shares != 54321 {
		t.Errorf("expected 54321 shares, got %d", apple.Shares)
	}
	if apple.IssuerName == "" {
		t.Error("expected issuer recovered from cells before the CUSIP")
	}
}

func TestParseText(t *testing.T) {
	raw := testutil.TextFiling(
		testutil.FixtureHolding{Cusip: "037833100", Issuer: "APPLE INC", Value: 17400000, Shares: 400000000},
		testutil.FixtureHolding{Cusip: "059428107", Issuer: "BANCO BRADESCO", Value: 4100000, Shares: 120000000},
	)

	filing, err := Parse(raw)
	testutil.AssertNoError(t, err)

	if filing.Dialect != DialectText {
		t.Errorf("expected dialect %q, got %q", DialectText, filing.Dialect)
	}
	if len(filing.Holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(filing.Holdings))
	}
	if filing.Holdings[0].Value != 17_400_000_000 {
		t.Errorf("expected value 17400000000, got %d", filing.Holdings[0].Value)
	}
	if filing.Holdings[0].IssuerName != "APPLE INC" {
		t.Errorf("expected issuer APPLE INC, got %q", filing.Holdings[0].IssuerName)
	}

	// The legacy SGML header carries the period and form type.
	wantPeriod := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if !filing.Cover.PeriodEnd.Equal(wantPeriod) {
		t.Errorf("expected period end %s, got %s", wantPeriod, filing.Cover.PeriodEnd)
	}
	if filing.Cover.FormType != "13F-HR" {
		t.Errorf("expected form type 13F-HR, got %q", filing.Cover.FormType)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("This document is not a filing in any recognized shape.")
	testutil.AssertAppError(t, err, "UNSUPPORTED_FORMAT")
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12345", 12345, true},
		{"12,345", 12345, true},
		{"$1,234,567", 1234567, true},
		{" 42 ", 42, true},
		{"1234.56", 1234, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := parseAmount(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseAmount(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
