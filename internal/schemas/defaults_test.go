package schemas

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/chat-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWithDefaults_EmptyCandidate(t *testing.T) {
	merged := MergeWithDefaults(nil)

	assert.Equal(t, Baseline(), merged)
}

func TestMergeWithDefaults_FieldRules(t *testing.T) {
	c := decode(t, `{
		"personalInfo": {"name": "Ada", "phone": null, "github": "ada"},
		"summary": "",
		"experience": [],
		"education": null,
		"skills": [{"category": "Go", "items": ["x"]}],
		"extra": true
	}`)

	merged := MergeWithDefaults(c)

	info := merged["personalInfo"].(map[string]any)
	assert.Equal(t, "Ada", info["name"])
	assert.Equal(t, "", info["email"], "missing personal info keys come from the baseline")
	assert.Equal(t, "", info["phone"], "null personal info values do not override the baseline")
	assert.Equal(t, "ada", info["github"], "unknown personal info keys are carried over")

	assert.Equal(t, "", merged["summary"])
	assert.Equal(t, []any{}, merged["experience"], "an empty sequence counts as present")
	assert.Equal(t, []any{}, merged["education"])
	assert.Len(t, merged["skills"], 1)
	assert.Equal(t, []any{}, merged["projects"])
	assert.NotContains(t, merged, "extra")
}

func TestMergeWithDefaults_NonObjectPersonalInfo(t *testing.T) {
	merged := MergeWithDefaults(types.Candidate{"personalInfo": "Ada"})

	assert.Equal(t, Baseline()["personalInfo"], merged["personalInfo"])
}

func TestMergeWithDefaults_DoesNotAliasInput(t *testing.T) {
	c := validCandidate()
	before, err := json.Marshal(c)
	require.NoError(t, err)

	merged := MergeWithDefaults(c)
	merged["personalInfo"].(map[string]any)["name"] = "Changed"
	merged["experience"].([]any)[0].(map[string]any)["title"] = "Changed"

	after, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestMergeWithDefaults_MergedValidCandidateStaysValid(t *testing.T) {
	merged := MergeWithDefaults(validCandidate())

	result := Validate(merged)
	require.True(t, result.Success, result.Errors)
	assert.Empty(t, result.Data.Projects)
}

func TestMergeWithDefaults_MissingSummaryStillFails(t *testing.T) {
	c := validCandidate()
	delete(c, "summary")

	first := Validate(c)
	require.False(t, first.Success)
	assert.Equal(t, []string{"summary: Required"}, first.Errors)

	second := Validate(MergeWithDefaults(c))
	require.False(t, second.Success)
	assert.Equal(t, []string{"summary: Summary should be at least 10 characters"}, second.Errors)
}

func TestMergeWithDefaults_RepairsMissingSections(t *testing.T) {
	c := validCandidate()
	delete(c, "education")
	delete(c, "skills")

	require.False(t, Validate(c).Success)

	result := Validate(MergeWithDefaults(c))
	require.True(t, result.Success, result.Errors)
	assert.Empty(t, result.Data.Education)
	assert.Empty(t, result.Data.Skills)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{false, false},
		{true, true},
		{float64(0), false},
		{float64(2), true},
		{[]any{}, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truthy(tt.value), "%#v", tt.value)
	}
}
