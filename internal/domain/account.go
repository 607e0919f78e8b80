package domain

import "strings"

// NormalizeAccount canonicalizes an account identifier
func NormalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
