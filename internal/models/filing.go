package models

import "time"

// Filing represents one ingested 13F submission. The filer-declared
// totals are retained as an informational cross-check only; the summary
// the rest of the system trusts is recomputed from the parsed holdings.
//
// Amendments (e.g. 13F-HR/A) for the same reporting period are stored as
// separate rows, so (fund_manager_id, period_end) is indexed but not
// unique.
type Filing struct {
	Base
	FundManagerID     string    `gorm:"type:uuid;not null;index:idx_filings_manager_period" json:"fund_manager_id"`
	AccessionNumber   string    `gorm:"not null;uniqueIndex:uq_filings_accession" json:"accession_number"`
	FilingDate        time.Time `gorm:"not null;index" json:"filing_date"`
	PeriodEnd         time.Time `gorm:"not null;index:idx_filings_manager_period" json:"period_end"`
	FormType          string    `gorm:"not null" json:"form_type"`
	DeclaredValue     int64     `json:"declared_value"`     // minor units, filer-declared
	DeclaredPositions int       `json:"declared_positions"` // filer-declared entry count
	TotalValue        int64     `json:"total_value"`        // minor units, summed from parsed holdings
	TotalPositions    int       `json:"total_positions"`    // parsed holding count
	SourceURL         string    `json:"source_url,omitempty"`
	ProcessedAt       time.Time `gorm:"not null" json:"processed_at"`

	FundManager *FundManager `gorm:"foreignKey:FundManagerID" json:"fund_manager,omitempty"`
}
