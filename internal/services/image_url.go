package services

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ValidateImageURL checks an uploaded image URL by shape only. An empty URL is
// allowed; an empty allowedHosts accepts any host.
func ValidateImageURL(raw string, allowedHosts []string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return invalidf("image URL must be an absolute https URL")
	}
	if !imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return invalidf("image URL must point to a jpg, png, gif or webp file")
	}
	if len(allowedHosts) == 0 {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range allowedHosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return nil
		}
	}
	return invalidf("image host %s is not allowed", host)
}
