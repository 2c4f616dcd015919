// Package breadcrumb derives a display path from a document URL.
package breadcrumb

import (
	"net/url"
	"strings"
)

// Format returns [hostname, segment...] for rawURL. Segments are
// percent-decoded and underscores become spaces, so wiki slugs read as titles.
// A URL that fails to parse or decode is returned unchanged as the only element.
func Format(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return []string{rawURL}
	}

	crumbs := []string{u.Hostname()}
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		dec, err := url.PathUnescape(seg)
		if err != nil {
			return []string{rawURL}
		}
		crumbs = append(crumbs, strings.ReplaceAll(dec, "_", " "))
	}
	return crumbs
}

// Join renders crumbs with a separator, e.g. "en.wikipedia.org › wiki › Go".
func Join(crumbs []string) string {
	return strings.Join(crumbs, " › ")
}
