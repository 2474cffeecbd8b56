package entity

// Classification is the outcome of comparing a snapshot against stored state.
type Classification string

const (
	Unchanged         Classification = "unchanged"
	Cancelled         Classification = "cancelled"
	SignificantChange Classification = "significant_change"
	Ignored           Classification = "ignored"
)

// Changed fields reported on a SignificantChange
const (
	FieldDelay    = "delay"
	FieldGate     = "gate"
	FieldTerminal = "terminal"
)

// ClassificationResult drives the per-flight branch in the reconciliation loop.
type ClassificationResult struct {
	Tag      Classification
	Snapshot FlightSnapshot
	Status   string
	Changes  []string
}
