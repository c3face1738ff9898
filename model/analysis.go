package model

import "time"

// AnalysisRequest describes a single binary to analyze. It is immutable
// once handed to the analyzer.
type AnalysisRequest struct {
	// Path to a locally readable binary file
	BinaryPath string `json:"binary_path"`
	// Original filename as supplied by the caller, kept for context
	Filename string `json:"filename"`
	// Optional architecture hint (e.g. "x86:LE:64:default"), passed through
	// to the analysis engine when set
	Architecture string `json:"architecture,omitempty"`
	// Optional wall-clock timeout override; zero means the configured default
	Timeout time.Duration `json:"timeout,omitempty"`
	// Correlation id used for workspace naming and log correlation.
	// Generated by the analyzer when empty.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ProcessResult captures a single invocation of the external tool.
type ProcessResult struct {
	// Exit code of the process
	ExitCode int `json:"exit_code"`
	// Full captured standard output
	Stdout string `json:"stdout"`
	// Full captured standard error, unfiltered
	Stderr string `json:"stderr"`
	// Standard error with known-benign lines removed
	FilteredStderr string `json:"filtered_stderr"`
	// Wall-clock duration of the invocation
	Duration time.Duration `json:"duration"`
}

// ParsedArtifact holds the structured results read back from a workspace
// after a successful tool run.
type ParsedArtifact struct {
	// Assembly listing / run summary text
	Assembly string `json:"assembly_code"`
	// Decompiled high-level code text
	Decompiled string `json:"decompiled_code"`
	// Normalized key/value metadata about the binary
	Metadata map[string]string `json:"metadata"`
	// Empty is set when both code-bearing artifacts came back blank.
	// Whether that counts as a failure is the orchestrator's call.
	Empty bool `json:"-"`
}

// ClassifiedError is an operator-actionable failure description.
type ClassifiedError struct {
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// AnalysisOutcome is the final result of one orchestrated analysis.
// Exactly one of (Assembly/Decompiled/Metadata) or Error is meaningful,
// selected by Success.
type AnalysisOutcome struct {
	Success    bool              `json:"success"`
	Assembly   string            `json:"assembly_code"`
	Decompiled string            `json:"decompiled_code"`
	Metadata   map[string]string `json:"metadata"`
	// Diagnostic carries a non-fatal note, e.g. for degraded (empty) results
	Diagnostic string           `json:"diagnostic,omitempty"`
	Error      *ClassifiedError `json:"error,omitempty"`
}
