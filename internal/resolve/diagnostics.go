package resolve

import "fmt"

// DiagnosticCode classifies a non-fatal resolution problem. Resolution never
// aborts the whole tree for any of these; the affected subtree degrades and a
// diagnostic is recorded.
type DiagnosticCode string

const (
	ReferenceMissing  DiagnosticCode = "reference_missing"
	DataFetchFailure  DiagnosticCode = "data_fetch_failure"
	CycleDetected     DiagnosticCode = "cycle_detected"
	MalformedVariable DiagnosticCode = "malformed_variable"
)

// Diagnostic is one recorded degradation, tied to the layer it happened on.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	LayerID string         `json:"layer_id,omitempty"`
	Detail  string         `json:"detail"`
}

func (d Diagnostic) String() string {
	if d.LayerID == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Detail)
	}
	return fmt.Sprintf("%s (layer %s): %s", d.Code, d.LayerID, d.Detail)
}
