package schemas

import "github.com/jonathan/chat-resume/internal/types"

// Baseline returns a fresh empty record in candidate form: empty strings for every
// personal info field and the summary, empty sequences for every section.
func Baseline() types.Candidate {
	return types.Candidate{
		"personalInfo": map[string]any{
			"name":     "",
			"email":    "",
			"phone":    "",
			"location": "",
			"linkedin": "",
			"website":  "",
		},
		"summary":        "",
		"experience":     []any{},
		"education":      []any{},
		"skills":         []any{},
		"projects":       []any{},
		"certifications": []any{},
	}
}

var topLevelFields = []string{"summary", "experience", "education", "skills", "projects", "certifications"}

// MergeWithDefaults fills gaps in candidate from the baseline. Each top-level field takes
// the candidate's value when it is present and truthy; personalInfo is merged key by key
// over the baseline's personal info. The result shares nothing with candidate, and
// keys outside the record shape are dropped.
func MergeWithDefaults(candidate types.Candidate) types.Candidate {
	merged := Baseline()

	info := merged["personalInfo"].(map[string]any)
	if given, ok := candidate["personalInfo"].(map[string]any); ok {
		for k, v := range given {
			if v != nil {
				info[k] = deepCopy(v)
			}
		}
	}

	for _, field := range topLevelFields {
		if v, ok := candidate[field]; ok && truthy(v) {
			merged[field] = deepCopy(v)
		}
	}
	return merged
}

// truthy treats null, the empty string, false and zero as absent. Empty sequences and
// objects count as present.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case types.Candidate:
		return deepCopy(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
