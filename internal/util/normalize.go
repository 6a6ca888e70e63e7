package util

import (
	"net/mail"
	"strings"
)

// NormalizeSender extracts and normalizes an email address from a From header.
// - Parses RFC 5322 "From" values like "Name <user+alias@Example.COM>"
// - Lowercases
// - Strips +alias in local part: user+news@x.com -> user@x.com
// Returns empty string if parsing fails or address is missing.
func NormalizeSender(fromHeader string) string {
	addr := parseFirstAddress(fromHeader)
	if addr == nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(addr.Address))
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return email
	}
	local := email[:at]
	if plus := strings.IndexByte(local, '+'); plus > -1 {
		local = local[:plus]
	}
	return local + "@" + email[at+1:]
}

// SenderName is what the mail list shows for a From header: the display
// name when present, else the local part title-cased ("jane.doe@x" -> "Jane Doe"),
// else the raw header.
func SenderName(fromHeader string) string {
	if addr := parseFirstAddress(fromHeader); addr != nil && strings.TrimSpace(addr.Name) != "" {
		return strings.TrimSpace(addr.Name)
	}
	normalized := NormalizeSender(fromHeader)
	at := strings.IndexByte(normalized, '@')
	if at <= 0 {
		return strings.TrimSpace(fromHeader)
	}
	parts := strings.Split(normalized[:at], ".")
	for i := range parts {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, " ")
}

func parseFirstAddress(fromHeader string) *mail.Address {
	if fromHeader == "" {
		return nil
	}
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		return addr
	}
	// Some headers carry a list; take the first entry that parses.
	for _, p := range strings.Split(fromHeader, ",") {
		if a, err := mail.ParseAddress(strings.TrimSpace(p)); err == nil {
			return a
		}
	}
	return nil
}
