package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/chat-resume/internal/types"
)

// GenerationSummary describes a generated record for the conversation
func GenerationSummary(title string, record types.ResumeRecord, sections Sections) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resume %q has been generated successfully. The resume includes:\n", title))
	sb.WriteString(fmt.Sprintf("- Personal information: %s\n", orNotProvided(record.PersonalInfo.Name)))
	if record.Summary != "" {
		sb.WriteString("- Professional summary: Included\n")
	} else {
		sb.WriteString("- Professional summary: Not provided\n")
	}
	sb.WriteString(fmt.Sprintf("- Work experience: %s\n", plural(len(record.Experience), "position", "positions")))
	sb.WriteString(fmt.Sprintf("- Education: %s\n", plural(len(record.Education), "degree", "degrees")))
	sb.WriteString(fmt.Sprintf("- Skills: %s\n", plural(len(record.Skills), "category", "categories")))
	if sections.Projects() {
		sb.WriteString(fmt.Sprintf("- Projects: %s\n", plural(len(record.Projects), "project", "projects")))
	}
	if sections.Certifications() {
		sb.WriteString(fmt.Sprintf("- Certifications: %s\n", plural(len(record.Certifications), "certification", "certifications")))
	}
	sb.WriteString("\nYou can now preview the resume and download it as a PDF.")
	return sb.String()
}

// FailureMessage is the user-facing text for a generation that produced no usable record
func FailureMessage(reason string) string {
	return fmt.Sprintf("Failed to generate resume: %s. Please try again or provide more information about your background, experience, and skills in the conversation.", reason)
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
