package reconcile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/HerbHall/leasesync/pkg/models"
)

// ErrMalformedLease marks a lease missing the fields reconciliation
// cannot work without.
var ErrMalformedLease = errors.New("malformed lease")

// macPattern is the canonical lowercase colon-separated MAC form a
// lease must normalize to.
var macPattern = regexp.MustCompile(`^[0-9a-f]{2}(:[0-9a-f]{2}){5}$`)

// genericNames are comment base names presumed to describe network
// infrastructure rather than a billable client. Leases matching the
// set are skipped, never imported.
var genericNames = map[string]bool{
	"unknown": true,
	"router":  true,
	"switch":  true,
	"ap":      true,
	"access":  true,
	"point":   true,
}

// Normalize canonicalizes a raw lease. The MAC is lowercased and must
// be in colon-separated form; the comment's first token becomes the
// base name and the second the address fragment. A lease whose base
// name is a known infrastructure name comes back with Generic set and
// is excluded from reconciliation by the caller.
func Normalize(l models.Lease) (models.NormalizedLease, error) {
	if l.MACAddress == "" || l.IPAddress == "" {
		return models.NormalizedLease{}, fmt.Errorf("%w: missing MAC or IP address", ErrMalformedLease)
	}
	mac := strings.ToLower(strings.TrimSpace(l.MACAddress))
	if !macPattern.MatchString(mac) {
		return models.NormalizedLease{}, fmt.Errorf("%w: MAC %q is not colon-separated hex", ErrMalformedLease, l.MACAddress)
	}

	var baseName, addressFragment string
	tokens := strings.Fields(l.Comment)
	if len(tokens) > 0 {
		baseName = tokens[0]
	}
	if len(tokens) > 1 {
		addressFragment = tokens[1]
	}

	n := models.NormalizedLease{
		MACAddress:      mac,
		IPAddress:       strings.TrimSpace(l.IPAddress),
		Comment:         strings.TrimSpace(l.Comment),
		AddressFragment: addressFragment,
		Generic:         genericNames[strings.ToLower(baseName)],
	}

	derived := strings.TrimSpace(baseName + " " + addressFragment)
	if len(derived) < 2 {
		// Anonymous lease: the MAC still gives a stable, unique key.
		derived = mac
	}
	n.DerivedName = derived
	return n, nil
}
