package models

// Security represents an equity instrument referenced by one or more
// holdings. Securities are keyed by CUSIP (9-character identifier) and
// created on first sighting; the issuer name from the first filing that
// references the CUSIP wins.
type Security struct {
	Base
	Cusip    string `gorm:"not null;uniqueIndex:uq_securities_cusip" json:"cusip"`
	Ticker   string `json:"ticker,omitempty"`
	Name     string `gorm:"not null" json:"name"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
}
