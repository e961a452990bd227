package domain

// RunStatus tracks where a workflow run sits in its lifecycle.
type RunStatus string

const (
	RunStarted         RunStatus = "started"
	RunActivityRunning RunStatus = "activity_running"
	RunRetrying        RunStatus = "retrying"
	RunCompleted       RunStatus = "completed"
	RunFailedBusiness  RunStatus = "failed_business"
	RunFailedInfra     RunStatus = "failed_infra"
)

// Terminal reports whether the run has reached a final state. No further
// activity calls are issued once a run is terminal.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailedBusiness, RunFailedInfra:
		return true
	}
	return false
}

// TransferResult is the saga's caller-facing outcome. Status discriminates
// "completed" from "failed"; on failure Error carries the normalized kind and
// Message stays human-readable. Raw stack traces never reach the caller.
type TransferResult struct {
	Status      string  `json:"status"`
	FromAccount string  `json:"from_account,omitempty"`
	ToAccount   string  `json:"to_account,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Error       string  `json:"error,omitempty"`
	Message     string  `json:"message,omitempty"`
}
