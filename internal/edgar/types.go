package edgar

import "time"

// IndexEntry is one row of an EDGAR filing index: a pointer to a single
// submission, before any document has been downloaded.
type IndexEntry struct {
	AccessionNumber string    `json:"accession_number"`
	FilerID         string    `json:"filer_id"` // CIK, no leading zeros
	FilerName       string    `json:"filer_name"`
	FormType        string    `json:"form_type"`
	DateFiled       time.Time `json:"date_filed"`
	FileName        string    `json:"file_name"`
}

// submissionsResponse is the shape of the EDGAR submissions JSON API.
// Filing attributes come back as parallel arrays.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}
