package userprofilesrepo

import (
	"fmt"
	"net/mail"
	"strings"
)

// gmailDomains ignore dots in the local part and share one mailbox space.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// CanonicalEmail normalises an address for uniqueness checks and lookups:
// it trims and lower-cases the address, drops a "+tag" suffix from the local
// part and, for Gmail, removes dots and folds googlemail.com into gmail.com.
func CanonicalEmail(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", fmt.Errorf("email is empty")
	}

	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", fmt.Errorf("invalid email address %q", raw)
	}

	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" {
		return "", fmt.Errorf("invalid email address %q", raw)
	}

	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}

	if gmailDomains[domain] {
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	}

	if local == "" {
		return "", fmt.Errorf("invalid email address %q", raw)
	}

	return local + "@" + domain, nil
}
