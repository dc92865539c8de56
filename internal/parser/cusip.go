package parser

// ValidCusip reports whether s is a well-formed CUSIP: exactly nine
// characters, eight uppercase alphanumerics followed by a single check
// digit. Lowercase identifiers are rejected; filings state CUSIPs in
// uppercase and a lowercase match in a heuristic row is almost always a
// false positive.
func ValidCusip(s string) bool {
	if len(s) != 9 {
		return false
	}
	for i := 0; i < 8; i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	last := s[8]
	return last >= '0' && last <= '9'
}
