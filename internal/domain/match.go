package domain

import "strings"

// MatchContract reports whether a contract satisfies the filter. Keyword is
// matched case-insensitively against the contract name and code; exchange
// and category are compared case-insensitively for equality. Empty filter
// fields match everything.
func MatchContract(c Contract, f ContractFilter) bool {
	if f.Exchange != "" && !strings.EqualFold(f.Exchange, c.Exchange) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, c.Category) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(c.Name), kw) &&
			!strings.Contains(strings.ToLower(c.Code), kw) {
			return false
		}
	}
	return true
}
