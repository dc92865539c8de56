package models

import "time"

// ChangeType classifies how a position moved between two adjacent periods.
type ChangeType string

const (
	ChangeNew       ChangeType = "NEW"
	ChangeSold      ChangeType = "SOLD"
	ChangeIncreased ChangeType = "INCREASED"
	ChangeDecreased ChangeType = "DECREASED"
	ChangeUnchanged ChangeType = "UNCHANGED"
)

// PositionChange is a derived record describing how a fund's holding in
// one security differed between two consecutive reporting periods. Rows
// are fully recomputable from holding history; writes are upserts keyed
// on (fund_manager_id, security_id, to_period) so recomputation never
// duplicates.
type PositionChange struct {
	Base
	FundManagerID string    `gorm:"type:uuid;not null;uniqueIndex:uq_position_changes_key" json:"fund_manager_id"`
	SecurityID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_position_changes_key" json:"security_id"`
	FromPeriod    time.Time `gorm:"not null" json:"from_period"`
	ToPeriod      time.Time `gorm:"not null;uniqueIndex:uq_position_changes_key" json:"to_period"`

	SharesChange  int64      `json:"shares_change"`
	ValueChange   int64      `json:"value_change"` // minor units
	PercentChange float64    `json:"percent_change"`
	ChangeType    ChangeType `gorm:"not null" json:"change_type"`
}
