package domain

// Outcome is the structured result of a mutation. Failures carry the
// reason as text for clients and the original error for callers that
// branch on it with errors.Is/As.
type Outcome struct {
	Success bool   `json:"success"`
	Changes int    `json:"changes"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// Succeeded reports a successful mutation touching n records.
func Succeeded(n int) Outcome {
	return Outcome{Success: true, Changes: n}
}

// Failed wraps err into a failed Outcome.
func Failed(err error) Outcome {
	return Outcome{Success: false, Error: err.Error(), Err: err}
}

// ItemOutcome is the per-item result of a bulk operation.
type ItemOutcome struct {
	Index int   `json:"index"`
	ID    int64 `json:"id,omitempty"`
	Outcome
}
