package errors

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host. It is used for the remote validation endpoint.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}

// ValidateOrigin checks a CORS allow-list entry: either the wildcard "*" or
// an http(s) URL accepted by [ValidateURL].
func ValidateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	return ValidateURL(origin)
}

// ValidateListenAddr checks a host:port listen address such as ":8000" or
// "127.0.0.1:8000".
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "listen address cannot be empty")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid listen address %q", addr)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return New(ErrCodeInvalidInput, "invalid port in listen address %q", addr)
	}
	return nil
}

// ValidateNodeID rejects identifiers that cannot be shown safely in logs or
// terminal output: IDs longer than maxLen and IDs containing control
// characters. The empty ID is accepted like any other. A maxLen of zero
// disables the length check.
func ValidateNodeID(id string, maxLen int) error {
	if maxLen > 0 && len(id) > maxLen {
		return New(ErrCodeInvalidPayload, "node id too long (max %d characters)", maxLen)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPayload, "node id %q contains control characters", id)
		}
	}
	return nil
}
