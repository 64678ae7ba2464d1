package model

// Disposition classifies the outcome of resolving one company.
type Disposition string

const (
	DispositionAutoAdopt    Disposition = "auto_adopt"
	DispositionNeedsReview  Disposition = "needs_review"
	DispositionManualReview Disposition = "manual_review"
	DispositionNoResult     Disposition = "no_result"
)

// CompanyState tracks a company's progress through the pipeline.
type CompanyState string

const (
	StatePending    CompanyState = "pending"
	StateQuerying   CompanyState = "querying"
	StateEvaluating CompanyState = "evaluating"
	StateScored     CompanyState = "scored"
	StateDecided    CompanyState = "decided"
	StateFailed     CompanyState = "failed"
	StateNoResult   CompanyState = "no_result"
)

// Decision is the terminal artifact for one company. URL is empty when the
// disposition is no_result. Immutable once created.
type Decision struct {
	CompanyID   string         `json:"company_id"`
	URL         string         `json:"url,omitempty"`
	Score       int            `json:"score"`
	Disposition Disposition    `json:"disposition"`
	QueryUsed   string         `json:"query_used,omitempty"`
	Components  map[string]int `json:"components,omitempty"`
	Similarity  float64        `json:"similarity,omitempty"`
	State       CompanyState   `json:"state"`
	Error       string         `json:"error,omitempty"`
}
