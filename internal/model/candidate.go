package model

// Candidate is a search hit after page evaluation: redirects resolved,
// page metadata extracted, path depth computed from the final URL.
type Candidate struct {
	Hit             SearchHit `json:"hit"`
	FinalURL        string    `json:"final_url"`
	RedirectChain   []string  `json:"redirect_chain,omitempty"`
	Domain          string    `json:"domain"`
	PathDepth       int       `json:"path_depth"`
	PageTitle       string    `json:"page_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	Headings        []string  `json:"headings,omitempty"`
	Blacklisted     bool      `json:"blacklisted"`
	PathPenalized   bool      `json:"path_penalized"`
}

// IsTopPage reports whether the candidate resolves to the site root.
func (c Candidate) IsTopPage() bool {
	return c.PathDepth == 0
}

// ScoredCandidate is a candidate plus its itemized component scores.
type ScoredCandidate struct {
	Candidate  Candidate      `json:"candidate"`
	Components map[string]int `json:"components"`
	Total      int            `json:"total"`
	Similarity float64        `json:"similarity"`
}
