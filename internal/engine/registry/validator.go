package registry

import (
	"errors"
	"net/url"
)

// ValidateURL applies the platform's delivery-target rules. The
// asymmetry is deliberate: plain http is tolerated only for local
// development targets, while https to loopback addresses is refused
// because it is a common SSRF probe.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid url format")
	}

	host := u.Hostname()

	switch u.Scheme {
	case "http":
		if host != "localhost" {
			return errors.New("http urls are only allowed for localhost")
		}
	case "https":
		if host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" {
			return errors.New("https urls must not target loopback addresses")
		}
	default:
		return errors.New("url must use http or https")
	}

	if host == "" {
		return errors.New("url must include a host")
	}

	return nil
}
