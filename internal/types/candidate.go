package types

// Candidate is an unvalidated, possibly incomplete record recovered from model output.
// It is the decoded JSON object exactly as the model produced it.
type Candidate map[string]any
