// Package model defines the shared data types flowing through the
// homepage-resolution pipeline.
package model

import (
	"regexp"
	"strings"
)

// Company is a single business record read from the record source.
// It is immutable input; the pipeline never mutates it.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Region   string `json:"region,omitempty"`
}

var (
	furiganaRe   = regexp.MustCompile(`【.*?】`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// CleanName returns the company name with furigana brackets removed and
// whitespace collapsed, suitable for query rendering and similarity matching.
func (c Company) CleanName() string {
	name := furiganaRe.ReplaceAllString(c.Name, "")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// SearchQuery is a rendered search query, tagged with the template that
// produced it. Created by the query generator, consumed once by the fetcher.
type SearchQuery struct {
	Template string `json:"template"`
	Text     string `json:"text"`
}

// SearchHit is one raw result from the search provider. Rank is 1-based
// within the query that produced it.
type SearchHit struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Rank        int         `json:"rank"`
	Query       SearchQuery `json:"query"`
}
