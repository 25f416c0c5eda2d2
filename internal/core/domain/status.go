package domain

// SessionState is the lifecycle state of a pipeline session.
type SessionState string

// Session states.
const (
	// StateUninitialized means the index is empty.
	StateUninitialized SessionState = "uninitialized"

	// StateReady means the index holds entries and queries can be answered.
	StateReady SessionState = "ready"
)

// Status is a snapshot of the pipeline.
type Status struct {
	Ready       bool     `json:"ready"`
	State       string   `json:"state"`
	Entries     int      `json:"entries"`
	Sources     []string `json:"sources"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Location    string   `json:"location,omitempty"`
}
