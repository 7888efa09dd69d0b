package browser

import (
	"github.com/gosimple/slug"
	"github.com/jpillora/go-tld"
)

// DefaultSessionName derives a stable, filesystem-safe session name from a
// target URL when the caller does not provide options.session.id, so
// repeated runs against the same origin reuse the same storage-state file
// without any configuration.
func DefaultSessionName(rawURL string) string {
	parsed, err := tld.Parse(rawURL)
	if err != nil || parsed.Domain == "" {
		return "default"
	}
	host := parsed.Domain
	if parsed.TLD != "" {
		host += "." + parsed.TLD
	}
	return slug.Make(host)
}
