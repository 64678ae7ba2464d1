package extract

import (
	"strings"

	"github.com/sells-group/hpfinder-cli/internal/config"
)

// Blacklist holds the domain exclusion set and the penalty keyword sets.
// Built once at startup and shared read-only across company pipelines.
type Blacklist struct {
	domains           map[string]bool
	pathKeywords      []string
	subdomainKeywords []string
}

// NewBlacklist builds a Blacklist from the loaded blacklist file. Domains
// are normalized to lowercase with any leading "www." stripped.
func NewBlacklist(bl *config.BlacklistFile) *Blacklist {
	b := &Blacklist{domains: make(map[string]bool)}
	if bl == nil {
		return b
	}
	for _, d := range bl.Domains {
		b.domains[NormalizeDomain(d)] = true
	}
	for _, k := range bl.PathKeywords {
		b.pathKeywords = append(b.pathKeywords, strings.ToLower(k))
	}
	for _, k := range bl.SubdomainKeywords {
		b.subdomainKeywords = append(b.subdomainKeywords, strings.ToLower(k))
	}
	return b
}

// NormalizeDomain lowercases a host and strips a leading "www." label.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// IsDomainBlacklisted reports whether the host is excluded. Matching is
// exact on the normalized domain.
func (b *Blacklist) IsDomainBlacklisted(host string) bool {
	return b.domains[NormalizeDomain(host)]
}

// IsPathPenalized reports whether the URL path contains any penalty keyword
// (substring match, case-insensitive).
func (b *Blacklist) IsPathPenalized(path string) bool {
	lower := strings.ToLower(path)
	for _, k := range b.pathKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsSubdomainPenalized reports whether any subdomain label of the host
// contains a penalty keyword.
func (b *Blacklist) IsSubdomainPenalized(host string) bool {
	lower := strings.ToLower(host)
	for _, k := range b.subdomainKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
