// Package enhance applies deterministic post-processing to validated records:
// bullet formatting and most-recent-first ordering.
package enhance

import (
	"sort"
	"strings"

	"github.com/jonathan/chat-resume/internal/types"
)

// BulletPrefix is prepended to description lines that are not already bulleted
const BulletPrefix = "• "

// Enhance returns a normalized copy of record. The input is left untouched and
// Enhance(Enhance(r)) equals Enhance(r).
func Enhance(record types.ResumeRecord) types.ResumeRecord {
	out := record.Clone()

	for i := range out.Experience {
		for j, line := range out.Experience[i].Description {
			out.Experience[i].Description[j] = FormatBullet(line)
		}
	}

	SortExperience(out.Experience)
	SortEducation(out.Education)
	return out
}

// FormatBullet prefixes line with a bullet unless it already starts with one
func FormatBullet(line string) string {
	if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") {
		return line
	}
	return BulletPrefix + line
}

// effectiveEnd is the end date, or the start date for entries without one
func effectiveEnd(exp types.Experience) string {
	if strings.TrimSpace(exp.EndDate) != "" {
		return exp.EndDate
	}
	return exp.StartDate
}

// SortExperience orders positions most recent first, in place. Current positions lead;
// equal end dates fall back to the later start date.
func SortExperience(exps []types.Experience) {
	sort.SliceStable(exps, func(i, j int) bool {
		if c := parseDate(effectiveEnd(exps[i])).compare(parseDate(effectiveEnd(exps[j]))); c != 0 {
			return c > 0
		}
		return parseDate(exps[i].StartDate).compare(parseDate(exps[j].StartDate)) > 0
	})
}

// SortEducation orders degrees by graduation date, most recent first, in place.
// Entries without a graduation date keep their relative order after all dated ones.
func SortEducation(edus []types.Education) {
	sort.SliceStable(edus, func(i, j int) bool {
		a, b := strings.TrimSpace(edus[i].GraduationDate), strings.TrimSpace(edus[j].GraduationDate)
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return parseDate(a).compare(parseDate(b)) > 0
	})
}
