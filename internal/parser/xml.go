package parser

import (
	"encoding/xml"
	"regexp"
	"strings"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
)

// xmlHolding mirrors one infoTable node of the 13F information table
// schema. Amounts are decoded as strings because real-world filings mix
// plain integers, comma-grouped numbers and the occasional decimal.
type xmlHolding struct {
	NameOfIssuer         string `xml:"nameOfIssuer"`
	TitleOfClass         string `xml:"titleOfClass"`
	Cusip                string `xml:"cusip"`
	Value                string `xml:"value"`
	InvestmentDiscretion string `xml:"investmentDiscretion"`
	ShrsOrPrnAmt         struct {
		Amount string `xml:"sshPrnamt"`
		Type   string `xml:"sshPrnamtType"`
	} `xml:"shrsOrPrnAmt"`
	VotingAuthority struct {
		Sole   string `xml:"Sole"`
		Shared string `xml:"Shared"`
		None   string `xml:"None"`
	} `xml:"votingAuthority"`
}

// xmlInformationTable is the infoTable container. A filing with a single
// holding and one with hundreds both decode into the same slice.
type xmlInformationTable struct {
	Entries []xmlHolding `xml:"infoTable"`
}

var nsPrefixRe = regexp.MustCompile(`<(/?)[A-Za-z][A-Za-z0-9._-]*:`)

// stripNamespaces removes namespace prefixes from element tags so that
// documents using ns1:, n1: or no prefix at all decode identically.
func stripNamespaces(s string) string {
	return nsPrefixRe.ReplaceAllString(s, "<$1")
}

// parseXML handles the structured path: extract the information-table
// fragment, decode its one-or-many holding nodes, and map them into the
// canonical shape. A holding whose CUSIP fails validation is dropped; the
// rest of the filing still parses.
func parseXML(raw string) (*Filing, error) {
	s := stripNamespaces(raw)

	fragment, err := informationTableFragment(s)
	if err != nil {
		return nil, err
	}

	var table xmlInformationTable
	if err := xml.Unmarshal([]byte(fragment), &table); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrNoInformationTable, err)
	}
	if len(table.Entries) == 0 {
		return nil, apperrors.ErrNoInformationTable
	}

	filing := &Filing{
		Cover:   parseCover(raw),
		Dialect: DialectXML,
	}
	for _, entry := range table.Entries {
		cusip := strings.TrimSpace(entry.Cusip)
		if !ValidCusip(cusip) {
			continue
		}
		value, _ := parseAmount(entry.Value)
		shares, _ := parseAmount(entry.ShrsOrPrnAmt.Amount)
		sole, _ := parseAmount(entry.VotingAuthority.Sole)
		shared, _ := parseAmount(entry.VotingAuthority.Shared)
		none, _ := parseAmount(entry.VotingAuthority.None)

		filing.Holdings = append(filing.Holdings, Holding{
			Cusip:        cusip,
			IssuerName:   strings.TrimSpace(entry.NameOfIssuer),
			ClassTitle:   strings.TrimSpace(entry.TitleOfClass),
			Value:        value * 1000, // stated in thousands
			Shares:       shares,
			ShareType:    strings.TrimSpace(entry.ShrsOrPrnAmt.Type),
			Discretion:   strings.TrimSpace(entry.InvestmentDiscretion),
			VotingSole:   sole,
			VotingShared: shared,
			VotingNone:   none,
		})
	}
	return summarize(filing), nil
}

// informationTableFragment cuts the informationTable element out of the
// surrounding document (which may be a bare XML table, a primary document
// or a full-text submission wrapper). Bare infoTable nodes without the
// container element are wrapped so both shapes decode the same way.
func informationTableFragment(s string) (string, error) {
	const openTag, closeTag = "<informationTable", "</informationTable>"

	if start := strings.Index(s, openTag); start >= 0 {
		end := strings.LastIndex(s, closeTag)
		if end < start {
			return "", apperrors.ErrNoInformationTable
		}
		return s[start : end+len(closeTag)], nil
	}

	first := strings.Index(s, "<infoTable")
	last := strings.LastIndex(s, "</infoTable>")
	if first < 0 || last < first {
		return "", apperrors.ErrNoInformationTable
	}
	return "<informationTable>" + s[first:last+len("</infoTable>")] + "</informationTable>", nil
}
