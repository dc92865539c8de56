package testutil

import (
	"fmt"
	"strings"
	"time"
)

// FixtureHolding describes one information-table entry for fixture builders.
type FixtureHolding struct {
	Cusip  string
	Issuer string
	Class  string
	Value  int64 // thousands, as filers state it
	Shares int64
}

// XMLFiling renders a 13F information table in the structured XML dialect,
// namespace prefixes included, the way real submissions carry it.
func XMLFiling(periodEnd string, holdings ...FixtureHolding) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<edgarSubmission><formData><coverPage>`)
	fmt.Fprintf(&b, `<periodOfReport>%s</periodOfReport>`, periodEnd)
	b.WriteString(`<filingManager><name>Test Capital Management</name></filingManager>`)
	b.WriteString(`</coverPage></formData></edgarSubmission>` + "\n")
	b.WriteString(`<ns1:informationTable xmlns:ns1="http://www.sec.gov/edgar/document/thirteenf/informationtable">` + "\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, `<ns1:infoTable>
  <ns1:nameOfIssuer>%s</ns1:nameOfIssuer>
  <ns1:titleOfClass>%s</ns1:titleOfClass>
  <ns1:cusip>%s</ns1:cusip>
  <ns1:value>%d</ns1:value>
  <ns1:shrsOrPrnAmt><ns1:sshPrnamt>%d</ns1:sshPrnamt><ns1:sshPrnamtType>SH</ns1:sshPrnamtType></ns1:shrsOrPrnAmt>
  <ns1:investmentDiscretion>SOLE</ns1:investmentDiscretion>
  <ns1:votingAuthority><ns1:Sole>%d</ns1:Sole><ns1:Shared>0</ns1:Shared><ns1:None>0</ns1:None></ns1:votingAuthority>
</ns1:infoTable>
`, h.Issuer, h.Class, h.Cusip, h.Value, h.Shares, h.Shares)
	}
	b.WriteString(`</ns1:informationTable>` + "\n")
	return b.String()
}

// HTMLFiling renders an information table in the loosely-structured HTML
// dialect with a filer-chosen column order.
func HTMLFiling(holdings ...FixtureHolding) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n")
	b.WriteString("<tr><th>Name of Issuer</th><th>Title of Class</th><th>CUSIP</th><th>Value (x$1000)</th><th>Shares</th></tr>\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
			h.Issuer, h.Class, h.Cusip, h.Value, h.Shares)
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}

// TextFiling renders a legacy plain-text submission with an information
// table section.
func TextFiling(holdings ...FixtureHolding) string {
	var b strings.Builder
	b.WriteString("CONFORMED SUBMISSION TYPE: 13F-HR\n")
	b.WriteString("CONFORMED PERIOD OF REPORT: 20240630\n\n")
	b.WriteString("                    FORM 13F INFORMATION TABLE\n")
	b.WriteString("NAME OF ISSUER            CUSIP      VALUE    SHARES\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "%-25s %s  %d  %d\n", h.Issuer, h.Cusip, h.Value, h.Shares)
	}
	b.WriteString("\n")
	return b.String()
}

// MasterIndex renders a daily master index file for the given entries.
// Each entry is "cik|name|form|accession".
func MasterIndex(date time.Time, rows ...[4]string) string {
	var b strings.Builder
	b.WriteString("Description: Master Index of EDGAR Dissemination Feed\n")
	b.WriteString("CIK|Company Name|Form Type|Date Filed|File Name\n")
	b.WriteString("--------------------------------------------------------------\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s|%s|%s|%s|edgar/data/%s/%s.txt\n",
			r[0], r[1], r[2], date.Format("2006-01-02"), r[0], r[3])
	}
	return b.String()
}
