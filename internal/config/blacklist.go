package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// BlacklistFile is the on-disk shape of the domain blacklist and penalty
// keyword sets. Loaded once at startup and shared read-only.
type BlacklistFile struct {
	Domains           []string `yaml:"blacklist_domains"`
	PathKeywords      []string `yaml:"path_penalty_keywords"`
	SubdomainKeywords []string `yaml:"subdomain_penalty_keywords"`
}

// LoadBlacklist reads the blacklist yaml at path. A missing file is a
// configuration error: running without a blacklist silently admits portal
// and listing domains.
func LoadBlacklist(path string) (*BlacklistFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read blacklist %s", path)
	}

	var bl BlacklistFile
	if err := yaml.Unmarshal(data, &bl); err != nil {
		return nil, eris.Wrapf(err, "config: parse blacklist %s", path)
	}
	return &bl, nil
}
