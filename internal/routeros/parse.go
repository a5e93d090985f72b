package routeros

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HerbHall/leasesync/pkg/models"
)

// Error markers the console prints instead of a lease listing.
var consoleErrorMarkers = []string{
	"bad command name",
	"syntax error",
	"expected end of command",
	"failure:",
	"input does not match any value",
}

// ParseTerse parses the output of the terse lease listing command into
// leases. Each line is "INDEX [FLAGS] key=value key=value ...";
// values are unquoted, so a value containing spaces continues until
// the next key=value token. Lines that do not start with a numeric
// index are ignored (prompts, blank lines).
func ParseTerse(output string) ([]models.Lease, error) {
	lower := strings.ToLower(output)
	for _, marker := range consoleErrorMarkers {
		if strings.Contains(lower, marker) {
			return nil, fmt.Errorf("console reported an error: %s", firstLine(output))
		}
	}

	var leases []models.Lease
	var sawContent bool
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sawContent = true

		fields := parseTerseLine(line)
		if fields == nil {
			continue
		}
		leases = append(leases, models.Lease{
			MACAddress: fields["mac-address"],
			IPAddress:  fields["address"],
			Comment:    fields["comment"],
			Status:     fields["status"],
		})
	}

	if sawContent && len(leases) == 0 {
		return nil, fmt.Errorf("unrecognized lease listing output: %s", firstLine(output))
	}
	return leases, nil
}

// parseTerseLine splits one terse row into its key/value fields.
// Returns nil if the line is not a lease row.
func parseTerseLine(line string) map[string]string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	if _, err := strconv.Atoi(tokens[0]); err != nil {
		return nil
	}

	fields := make(map[string]string)
	var lastKey string
	for _, tok := range tokens[1:] {
		if eq := strings.IndexByte(tok, '='); eq > 0 {
			lastKey = tok[:eq]
			fields[lastKey] = tok[eq+1:]
			continue
		}
		if lastKey == "" {
			// Flag column (D = dynamic, X = disabled, ...) before the
			// first key=value pair.
			continue
		}
		// Unquoted value containing spaces: append to the previous key.
		fields[lastKey] += " " + tok
	}
	return fields
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
