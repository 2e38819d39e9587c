// Package pageid derives canonical page identities from raw addresses.
//
// A PageKey is the address with its fragment stripped: two addresses
// differing only by fragment identify the same page, while differing
// query strings identify different pages. The query string is
// preserved verbatim - ordering and casing are significant.
package pageid

import (
	"fmt"
	"net/url"
	"strings"
)

// InvalidURLError indicates an address that cannot serve as a PageKey.
type InvalidURLError struct {
	Raw    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Raw, e.Reason)
}

// Normalize derives the canonical PageKey for a raw address.
// The input must parse as an absolute URL. Normalize is idempotent:
// normalizing an already-normalized key returns it unchanged.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &InvalidURLError{Raw: raw, Reason: "empty address"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &InvalidURLError{Raw: raw, Reason: err.Error()}
	}
	if u.Scheme == "" {
		return "", &InvalidURLError{Raw: raw, Reason: "not an absolute URL"}
	}
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return "", &InvalidURLError{Raw: raw, Reason: "no host or path"}
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// Display returns a human-readable form of a PageKey, used where no
// better title is available: host plus path, without scheme or query.
// Unparseable keys are returned as-is.
func Display(key string) string {
	u, err := url.Parse(key)
	if err != nil || u.Host == "" {
		return key
	}
	display := u.Host + u.Path
	return strings.TrimSuffix(display, "/")
}
