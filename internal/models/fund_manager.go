package models

// FundManager represents an institutional investment manager that files
// quarterly holdings disclosures. Managers are identified by the CIK
// assigned to them by the SEC and are created on first sighting.
type FundManager struct {
	Base
	CIK     string `gorm:"not null;uniqueIndex:uq_fund_managers_cik" json:"cik"`
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}
