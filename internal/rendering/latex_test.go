package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/chat-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() types.ResumeRecord {
	return types.ResumeRecord{
		PersonalInfo: types.PersonalInfo{
			Name:  "Ada Lovelace",
			Email: "ada_l@example.com",
			Phone: "555-0100",
		},
		Summary: "Engineer & mathematician.",
		Experience: []types.Experience{
			{Title: "Lead", Company: "Engines Ltd", Location: "London", StartDate: "2019", EndDate: "Present",
				Description: []string{"• Led team & ran 50% of ops"}},
			{Title: "Engineer", Company: "Engines Ltd", StartDate: "2016", EndDate: "2019",
				Description: []string{"- Built the mill"}},
			{Title: "Analyst", Company: "Old Co", StartDate: "2012", EndDate: "2015",
				Description: []string{"Wrote notes"}},
			{Title: "Lead", Company: "Engines Ltd", StartDate: "2010", EndDate: "2011",
				Description: []string{"• Started the lab"}},
		},
		Education: []types.Education{
			{Degree: "BSc", Institution: "UCL", GraduationDate: "2009", GPA: "3.9"},
		},
		Skills: []types.SkillCategory{{Category: "Languages", Items: []string{"C#", "Go"}}},
		Projects: []types.Project{
			{Name: "Engine", Description: "A machine", Technologies: []string{"brass"}},
		},
		Certifications: []types.Certification{{Name: "CKA", Issuer: "CNCF", Date: "2020"}},
	}
}

func TestGroupByCompanyAndRole(t *testing.T) {
	companies := groupByCompanyAndRole(sampleRecord().Experience)

	require.Len(t, companies, 2)
	assert.Equal(t, "Engines Ltd", companies[0].Company)
	assert.Equal(t, "London", companies[0].Location)
	assert.Equal(t, "Old Co", companies[1].Company)

	roles := companies[0].Roles
	require.Len(t, roles, 2)
	assert.Equal(t, "Lead", roles[0].Role)
	assert.Equal(t, "2019 -- Present, 2010 -- 2011", roles[0].DateRanges)
	assert.Equal(t, []string{`Led team \& ran 50\% of ops`, "Started the lab"}, roles[0].Bullets)
	assert.Equal(t, "Engineer", roles[1].Role)
	assert.Equal(t, []string{"Built the mill"}, roles[1].Bullets)
}

func TestGroupByCompanyAndRole_Empty(t *testing.T) {
	assert.Empty(t, groupByCompanyAndRole(nil))
}

func TestMergeDateRanges(t *testing.T) {
	tests := []struct {
		name    string
		entries []types.Experience
		want    string
	}{
		{"current", []types.Experience{{StartDate: "2019", EndDate: "present"}}, "2019 -- Present"},
		{"open ended", []types.Experience{{StartDate: "2019"}}, "2019"},
		{"duplicates collapse", []types.Experience{
			{StartDate: "2019", EndDate: "2020"},
			{StartDate: "2019", EndDate: "2020"},
		}, "2019 -- 2020"},
		{"no dates", []types.Experience{{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeDateRanges(tt.entries))
		})
	}
}

func TestBuildTemplateData_Escapes(t *testing.T) {
	data := BuildTemplateData(sampleRecord())

	assert.Equal(t, "Ada Lovelace", data.Name)
	assert.Equal(t, []string{`ada\_l@example.com`, "555-0100"}, data.Contact)
	assert.Equal(t, `Engineer \& mathematician.`, data.Summary)
	assert.Equal(t, []string{`C\#`, "Go"}, data.Skills[0].Items)
	assert.Equal(t, "GPA 3.9", data.Education[0].Detail)
}

func TestLaTeXRenderer_Render(t *testing.T) {
	r := NewLaTeXRenderer("")

	out, err := r.Render(context.Background(), sampleRecord(), "Resume")
	require.NoError(t, err)

	tex := string(out)
	assert.Contains(t, tex, `\documentclass`)
	assert.Contains(t, tex, `\textbf{Ada Lovelace}`)
	assert.Contains(t, tex, `ada\_l@example.com $\cdot$ 555-0100`)
	assert.Contains(t, tex, `\item Led team \& ran 50\% of ops`)
	assert.Contains(t, tex, `\textit{Lead} \hfill 2019 -- Present, 2010 -- 2011`)
	assert.Contains(t, tex, `\section*{Certifications}`)
	assert.NotContains(t, tex, "•")
	assert.Equal(t, "application/x-tex", r.ContentType())
	assert.Equal(t, ".tex", r.Extension())
}

func TestLaTeXRenderer_OmitsEmptySections(t *testing.T) {
	record := sampleRecord()
	record.Projects = nil
	record.Certifications = []types.Certification{}

	out, err := NewLaTeXRenderer("").Render(context.Background(), record, "")
	require.NoError(t, err)

	assert.NotContains(t, string(out), `\section*{Projects}`)
	assert.NotContains(t, string(out), `\section*{Certifications}`)
}

func TestLaTeXRenderer_DoesNotModifyRecord(t *testing.T) {
	record := sampleRecord()

	_, err := NewLaTeXRenderer("").Render(context.Background(), record, "")
	require.NoError(t, err)

	assert.Equal(t, sampleRecord(), record)
}

func TestLaTeXRenderer_CustomTemplate(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "custom.tex")
	require.NoError(t, os.WriteFile(templatePath, []byte(`Name: {{.Name}}`), 0o644))

	out, err := NewLaTeXRenderer(templatePath).Render(context.Background(), sampleRecord(), "")
	require.NoError(t, err)
	assert.Equal(t, "Name: Ada Lovelace", string(out))
}

func TestLaTeXRenderer_TemplateErrors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid.tex")
	require.NoError(t, os.WriteFile(invalid, []byte(`{{.InvalidSyntax{{}}`), 0o644))

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"missing file", "/nonexistent/template.tex", "template file not found"},
		{"invalid syntax", invalid, "failed to parse template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLaTeXRenderer(tt.path).Render(context.Background(), sampleRecord(), "")
			require.Error(t, err)
			var templateErr *TemplateError
			assert.ErrorAs(t, err, &templateErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
