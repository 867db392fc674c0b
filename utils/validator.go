package utils

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var shortCodeFormat = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidateURL accepts absolute http(s) destinations for ads, downloads and
// short links. Literal loopback and private addresses are refused; host names
// are not resolved since the service only ever redirects to them.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrEmptyURL
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ErrInvalidScheme
	}

	host := u.Hostname()
	if host == "" {
		return ErrEmptyHost
	}
	return checkHost(host)
}

func checkHost(host string) error {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return ErrLocalhostNotAllowed
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	switch {
	case ip.IsLoopback(), ip.IsUnspecified():
		return ErrLocalhostNotAllowed
	case ip.IsPrivate(), ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return ErrPrivateIPNotAllowed
	}
	return nil
}

// NormalizeShortCode validates a user supplied short code and returns it
// lowercased.
// Rules:
// - Length: minLength-maxLength characters
// - Characters: a-z, A-Z, 0-9, -
// - Must start and end with a letter or digit
// - Cannot be a reserved word
func NormalizeShortCode(raw string, minLength, maxLength int) (string, error) {
	code := strings.TrimSpace(raw)

	if !shortCodeFormat.MatchString(code) {
		return "", ErrInvalidShortCode
	}
	if len(code) < minLength {
		return "", ErrCodeTooShort
	}
	if len(code) > maxLength {
		return "", ErrCodeTooLong
	}
	if code[0] == '-' || code[len(code)-1] == '-' {
		return "", ErrCodeInvalidEdge
	}

	code = strings.ToLower(code)
	if IsReservedCode(code) {
		return "", ErrCodeReserved
	}
	return code, nil
}
