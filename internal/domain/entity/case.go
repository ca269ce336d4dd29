package entity

// Case statuses derived from the engine's execution state.
const (
	CaseStatusPending   = "pending"
	CaseStatusApproved  = "approved"
	CaseStatusRejected  = "rejected"
	CaseStatusCompleted = "completed"
)

// Submitter identifies who opened a case.
type Submitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CaseData is the category-specific payload attached to a case.
type CaseData struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
}

// Case is the externally visible view of a business case. The engine's
// workflow owns the underlying state; the bridge only reads snapshots of it.
type Case struct {
	CaseID    string    `json:"caseId"`
	TenantID  string    `json:"tenantId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Submitter Submitter `json:"submitter"`
	CaseData  CaseData  `json:"caseData"`
	Status    string    `json:"status"`
}

// NewCase carries the attributes of a case to be created.
type NewCase struct {
	SubmitterName  string
	SubmitterEmail string
	Amount         float64
	Currency       string
	Category       string
	Title          string
	TenantID       string
}

// Decision is a one-shot event sent into a running case. The bridge forwards
// it to the engine and never stores it.
type Decision struct {
	Decision string                 `json:"decision"`
	Reviewer string                 `json:"reviewer,omitempty"`
	Comments string                 `json:"comments,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DecisionResult confirms that a decision signal was handed to the engine.
// It says nothing about whether the workflow's business logic accepted it.
type DecisionResult struct {
	CaseID  string `json:"caseId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
