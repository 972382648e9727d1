package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolation_String(t *testing.T) {
	v := Violation{FieldPath: "personalInfo.email", Message: "Valid email is required"}
	assert.Equal(t, "personalInfo.email: Valid email is required", v.String())
}

func TestViolations_Strings(t *testing.T) {
	vs := Violations{
		{FieldPath: "summary", Message: "Required"},
		{FieldPath: "experience.0.title", Message: "Job title is required"},
	}

	assert.Equal(t, []string{
		"summary: Required",
		"experience.0.title: Job title is required",
	}, vs.Strings())
}

func TestViolations_StringsEmpty(t *testing.T) {
	var vs Violations
	assert.NotNil(t, vs.Strings())
	assert.Empty(t, vs.Strings())
}

func TestViolations_HasPath(t *testing.T) {
	vs := Violations{{FieldPath: "summary", Message: "Required"}}

	assert.True(t, vs.HasPath("summary"))
	assert.False(t, vs.HasPath("experience"))
}
