// Package parser converts a raw 13F document of unknown exact dialect
// into a canonical filing representation. Three dialects are supported:
// structured XML information tables, loosely-structured HTML tables, and
// legacy plain-text submissions. The XML path is authoritative; the HTML
// and text paths are positional heuristics kept as fallback tiers.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
)

// Dialect identifies which parsing path produced a filing.
type Dialect string

const (
	DialectXML  Dialect = "xml"
	DialectHTML Dialect = "html"
	DialectText Dialect = "text"
)

// CoverPage holds filing-level metadata recovered from the document.
// Every field is best-effort; the ingestion layer falls back to index
// entry data for anything missing.
type CoverPage struct {
	FilerName string
	FormType  string
	PeriodEnd time.Time

	// Filer-declared totals, retained as an informational cross-check
	// only. DeclaredValue is in whole currency units.
	DeclaredValue int64
	DeclaredCount int
}

// SummaryPage holds the recomputed totals for a parsed filing. These are
// always summed from the successfully parsed holdings, never trusted from
// the filer's own declared figures.
type SummaryPage struct {
	EntryCount int
	TotalValue int64 // whole currency units
}

// Holding is one canonical information-table entry. Value is in whole
// currency units (the filer states thousands; the parser scales up).
type Holding struct {
	Cusip        string
	IssuerName   string
	ClassTitle   string
	Value        int64
	Shares       int64
	ShareType    string // SH or PRN
	Discretion   string
	VotingSole   int64
	VotingShared int64
	VotingNone   int64
}

// Filing is the canonical representation of one parsed document.
type Filing struct {
	Cover    CoverPage
	Summary  SummaryPage
	Holdings []Holding
	Dialect  Dialect
}

// Parse detects the document dialect and parses it. An individual
// malformed holding row is dropped without failing the filing; an
// unrecognizable document or a missing information table fails it.
func Parse(raw string) (*Filing, error) {
	switch {
	case strings.Contains(raw, "<?xml") || containsFold(raw, "<informationTable") || containsFold(raw, "<infoTable"):
		return parseXML(raw)
	case containsFold(raw, "<table"):
		return parseHTML(raw)
	case containsFold(raw, "INFORMATION TABLE"):
		return parseText(raw)
	default:
		return nil, apperrors.ErrUnsupportedFormat
	}
}

// summarize fills the recomputed summary from the parsed holdings.
func summarize(f *Filing) *Filing {
	for _, h := range f.Holdings {
		f.Summary.TotalValue += h.Value
	}
	f.Summary.EntryCount = len(f.Holdings)
	return f
}

var (
	periodTagRe    = regexp.MustCompile(`<periodOfReport>\s*([^<]+?)\s*</periodOfReport>`)
	periodHeaderRe = regexp.MustCompile(`CONFORMED PERIOD OF REPORT:\s*(\d{8})`)
	formTagRe      = regexp.MustCompile(`<submissionType>\s*([^<]+?)\s*</submissionType>`)
	formHeaderRe   = regexp.MustCompile(`CONFORMED SUBMISSION TYPE:\s*(\S+)`)
	filerNameRe    = regexp.MustCompile(`(?s)<filingManager>.*?<name>\s*([^<]+?)\s*</name>`)
	valueTotalRe   = regexp.MustCompile(`<tableValueTotal>\s*([\d,]+)\s*</tableValueTotal>`)
	entryTotalRe   = regexp.MustCompile(`<tableEntryTotal>\s*(\d+)\s*</tableEntryTotal>`)
)

// parseCover extracts filing-level metadata, tolerating both the XML
// cover page tags and the legacy SGML header fields.
func parseCover(raw string) CoverPage {
	cover := CoverPage{}
	s := stripNamespaces(raw)

	if m := periodTagRe.FindStringSubmatch(s); m != nil {
		for _, layout := range []string{"01-02-2006", "2006-01-02"} {
			if t, err := time.Parse(layout, m[1]); err == nil {
				cover.PeriodEnd = t
				break
			}
		}
	}
	if cover.PeriodEnd.IsZero() {
		if m := periodHeaderRe.FindStringSubmatch(s); m != nil {
			if t, err := time.Parse("20060102", m[1]); err == nil {
				cover.PeriodEnd = t
			}
		}
	}

	if m := formTagRe.FindStringSubmatch(s); m != nil {
		cover.FormType = m[1]
	} else if m := formHeaderRe.FindStringSubmatch(s); m != nil {
		cover.FormType = m[1]
	}

	if m := filerNameRe.FindStringSubmatch(s); m != nil {
		cover.FilerName = m[1]
	}

	// Declared totals are stated in thousands, like the table values.
	if m := valueTotalRe.FindStringSubmatch(s); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			cover.DeclaredValue = v * 1000
		}
	}
	if m := entryTotalRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			cover.DeclaredCount = n
		}
	}
	return cover
}

// holdingFromTokens applies the positional heuristic shared by the HTML
// and text paths: locate the CUSIP-pattern token, take the declared value
// from the cell immediately after it and the share count from the next.
// Returns false for rows without a locatable valid identifier.
func holdingFromTokens(tokens []string) (Holding, bool) {
	cusipIdx := -1
	for i, tok := range tokens {
		if ValidCusip(tok) {
			cusipIdx = i
			break
		}
	}
	if cusipIdx < 0 || cusipIdx+2 >= len(tokens) {
		return Holding{}, false
	}

	value, ok := parseAmount(tokens[cusipIdx+1])
	if !ok {
		return Holding{}, false
	}
	shares, ok := parseAmount(tokens[cusipIdx+2])
	if !ok {
		return Holding{}, false
	}

	issuer := strings.TrimSpace(strings.Join(tokens[:cusipIdx], " "))
	return Holding{
		Cusip:      tokens[cusipIdx],
		IssuerName: issuer,
		Value:      value * 1000, // stated in thousands
		Shares:     shares,
	}, true
}

// parseAmount parses a numeric cell, tolerating thousands separators,
// currency signs and surrounding whitespace.
func parseAmount(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = cleaned[:i] // drop fractional part; counts are integral
		if cleaned == "" {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
