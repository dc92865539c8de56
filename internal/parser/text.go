package parser

import (
	"strings"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
)

// parseText handles legacy plain-text submissions: locate the information
// table section by its keyword header, then consume whitespace-delimited
// rows until a blank line or an explicit end marker, applying the same
// positional heuristic as the HTML path.
func parseText(raw string) (*Filing, error) {
	upper := strings.ToUpper(raw)
	idx := strings.Index(upper, "INFORMATION TABLE")
	if idx < 0 {
		return nil, apperrors.ErrNoInformationTable
	}

	filing := &Filing{
		Cover:   parseCover(raw),
		Dialect: DialectText,
	}

	lines := strings.Split(raw[idx:], "\n")
	started := false
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if started {
				break
			}
			continue // header padding before the first data row
		}
		if strings.Contains(strings.ToUpper(trimmed), "</TABLE>") {
			break
		}
		if h, ok := holdingFromTokens(strings.Fields(trimmed)); ok {
			filing.Holdings = append(filing.Holdings, h)
			started = true
		}
	}

	if len(filing.Holdings) == 0 {
		return nil, apperrors.ErrNoInformationTable
	}
	return summarize(filing), nil
}
