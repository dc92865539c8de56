package models

import "time"

// DialectXML, DialectHTML and DialectText record which parser path
// produced a holding. HTML and text rows come from positional heuristics
// and carry less confidence than the structured XML path.
const (
	DialectXML  = "xml"
	DialectHTML = "html"
	DialectText = "text"
)

// Holding represents one position in one filing's information table.
// Value is stored in integer minor currency units (cents), never floating
// point. PctOfPortfolio is always derived from the filing's own holdings,
// never copied from the filer; the sum across one filing is ~100.
// PeriodEnd is denormalized from the filing for query locality.
type Holding struct {
	Base
	FilingID      string    `gorm:"type:uuid;not null;index" json:"filing_id"`
	FundManagerID string    `gorm:"type:uuid;not null;index:idx_holdings_manager_security" json:"fund_manager_id"`
	SecurityID    string    `gorm:"type:uuid;not null;index:idx_holdings_manager_security" json:"security_id"`
	PeriodEnd     time.Time `gorm:"not null;index" json:"period_end"`

	Shares         int64   `gorm:"not null" json:"shares"`
	ShareType      string  `json:"share_type,omitempty"` // SH or PRN
	Value          int64   `gorm:"not null" json:"value"` // minor units
	PctOfPortfolio float64 `json:"pct_of_portfolio"`

	Discretion   string `json:"discretion,omitempty"` // SOLE, SHARED, OTHER
	VotingSole   int64  `json:"voting_sole"`
	VotingShared int64  `json:"voting_shared"`
	VotingNone   int64  `json:"voting_none"`

	// Source records the parser dialect that produced this row.
	Source string `json:"source,omitempty"`

	Filing   *Filing   `gorm:"foreignKey:FilingID" json:"filing,omitempty"`
	Security *Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}
