package hibp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/breachwatch/pwncheck/internal/errors"
	"github.com/rs/zerolog/log"
)

// Record is a single suffix:count pair from a range API response.
// Padding entries carry a count of zero and never indicate a breach.
type Record struct {
	Suffix string
	Count  int64
}

// parseRange decodes a text/plain range response body into records.
// Malformed lines are skipped; a non-empty body that yields no valid
// record at all is treated as a parse failure rather than "not breached".
func parseRange(body string) ([]Record, error) {
	lines := strings.Split(body, "\n")
	records := make([]Record, 0, len(lines))
	sawData := false
	malformed := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sawData = true

		suffix, countStr, ok := strings.Cut(line, ":")
		if !ok {
			malformed++
			continue
		}
		suffix = strings.TrimSpace(suffix)
		if len(suffix) != SuffixLen {
			malformed++
			continue
		}
		count, err := strconv.ParseInt(strings.TrimSpace(countStr), 10, 64)
		if err != nil || count < 0 {
			malformed++
			continue
		}
		records = append(records, Record{Suffix: suffix, Count: count})
	}

	if malformed > 0 {
		log.Debug().Int("lines", malformed).Msg("Skipped malformed range response lines")
	}
	if sawData && len(records) == 0 {
		return nil, errors.WrapParseError("parse_range",
			fmt.Errorf("%w: no valid suffix:count lines", errors.ErrMalformedBody))
	}
	return records, nil
}
