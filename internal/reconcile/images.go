package reconcile

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultImageWidth is the thumbnail width requested for leader portraits.
const DefaultImageWidth = 48

// ImagePolicy decides which portrait URLs may be published and how they are resized.
type ImagePolicy struct {
	AllowedHosts []string
	Width        int
}

// DefaultImagePolicy allows the two Wikimedia media hosts.
func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		AllowedHosts: []string{"commons.wikimedia.org", "upload.wikimedia.org"},
		Width:        DefaultImageWidth,
	}
}

// Sanitize upgrades http to https and accepts only https URLs on an allowed host, rewritten to
// request a thumbnail via the width query parameter. Anything else yields "".
func (p ImagePolicy) Sanitize(raw string) string {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return ""
	}
	if len(normalized) >= len("http://") && strings.EqualFold(normalized[:len("http://")], "http://") {
		normalized = "https://" + normalized[len("http://"):]
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	if u.Scheme != "https" {
		return ""
	}
	if !p.allows(u.Hostname()) {
		return ""
	}

	width := p.Width
	if width <= 0 {
		width = DefaultImageWidth
	}
	query := u.Query()
	query.Set("width", strconv.Itoa(width))
	u.RawQuery = query.Encode()
	return u.String()
}

func (p ImagePolicy) allows(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, allowed := range p.AllowedHosts {
		if strings.ToLower(strings.TrimSpace(allowed)) == host {
			return true
		}
	}
	return false
}
