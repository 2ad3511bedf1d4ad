package catalog

import (
	"net/url"
	"strings"
)

// ImageHosts are the hosts Google Books serves cover images from.
// An entry with a leading dot matches any subdomain.
var ImageHosts = []string{"books.google.com", ".googleusercontent.com"}

// IsImageURL reports whether raw is a plain http(s) URL on one of hosts.
func IsImageURL(raw string, hosts []string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, allowed := range hosts {
		allowed = strings.ToLower(allowed)
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}
