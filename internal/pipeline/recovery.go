package pipeline

import (
	"github.com/jonathan/chat-resume/internal/schemas"
	"github.com/jonathan/chat-resume/internal/types"
)

// ValidateFunc checks a candidate against the record shape
type ValidateFunc func(candidate any) schemas.ValidationResult

// MergeFunc fills a candidate's gaps from the empty baseline
type MergeFunc func(candidate types.Candidate) types.Candidate

// Recovery is the result of validating a candidate with one defaults-merge retry.
// On failure Errors and Violations come from the first validation.
type Recovery struct {
	Success    bool
	Record     *types.ResumeRecord
	Errors     []string
	Violations types.Violations
	Recovered  bool
}

// RecoverWith composes validate, merge, validate. The second validation only decides
// success; its diagnostics are discarded because the merged baseline masks the
// specific failures of the original candidate.
func RecoverWith(validate ValidateFunc, merge MergeFunc) func(types.Candidate) Recovery {
	return func(candidate types.Candidate) Recovery {
		first := validate(candidate)
		if first.Success {
			return Recovery{Success: true, Record: first.Data}
		}

		second := validate(merge(candidate))
		if second.Success {
			return Recovery{Success: true, Record: second.Data, Recovered: true}
		}

		return Recovery{Errors: first.Errors, Violations: first.Violations}
	}
}

// ValidateWithRecovery validates candidate, retrying once after merging defaults
func ValidateWithRecovery(candidate types.Candidate) Recovery {
	return RecoverWith(schemas.Validate, schemas.MergeWithDefaults)(candidate)
}
