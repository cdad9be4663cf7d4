package domain

// Outcome describes how a single invocation ended.
type Outcome string

const (
	OutcomeFinished      Outcome = "finished"       // Instruction pointer reached the end of the program
	OutcomeSuspended     Outcome = "suspended"      // Stopped on ',' waiting for a value
	OutcomeInputRejected Outcome = "input_rejected" // Supplied value could not be decoded; nothing executed
)

// InputDiagnostic replaces the output when a supplied value cannot be decoded.
const InputDiagnostic = "Valid inputs are either 0..255 or a single character."

// CachedResult is the memoized form of a successful invocation.
type CachedResult struct {
	Program       string  `json:"program_code"`
	Output        string  `json:"stdout"`
	NextState     string  `json:"serialized_state"`
	AwaitingInput bool    `json:"expecting_input"`
	Outcome       Outcome `json:"outcome"`
	Steps         uint64  `json:"steps"`
}
