package rendering

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/jonathan/chat-resume/internal/enhance"
	"github.com/jonathan/chat-resume/internal/types"
)

//go:embed templates/resume.tex
var defaultLaTeXTemplate string

// TemplateData represents the data structure passed to the LaTeX template.
// Every string is already escaped.
type TemplateData struct {
	Name           string
	Contact        []string
	Summary        string
	Companies      []CompanySection
	Education      []EducationLine
	Skills         []SkillLine
	Projects       []ProjectLine
	Certifications []CertificationLine
}

// CompanySection represents a company with one or more roles
type CompanySection struct {
	Company  string
	Location string
	Roles    []RoleSection
}

// RoleSection represents a role within a company with merged date ranges
type RoleSection struct {
	Role       string
	DateRanges string // e.g., "2019 -- 2020, 2022 -- Present"
	Bullets    []string
}

// EducationLine is one degree
type EducationLine struct {
	Degree      string
	Institution string
	Detail      string
	Date        string
}

// SkillLine is one skill category
type SkillLine struct {
	Category string
	Items    []string
}

// ProjectLine is one project
type ProjectLine struct {
	Name         string
	Description  string
	Technologies []string
	URL          string
}

// CertificationLine is one certification
type CertificationLine struct {
	Name   string
	Issuer string
	Date   string
}

// LaTeXRenderer renders LaTeX source. The template is read and parsed once, on first use.
type LaTeXRenderer struct {
	templatePath string

	once sync.Once
	tmpl *template.Template
	err  error
}

// NewLaTeXRenderer creates a renderer for the template at templatePath, or for the
// built-in template when templatePath is empty.
func NewLaTeXRenderer(templatePath string) *LaTeXRenderer {
	return &LaTeXRenderer{templatePath: templatePath}
}

// ContentType implements Renderer
func (r *LaTeXRenderer) ContentType() string { return "application/x-tex" }

// Extension implements Renderer
func (r *LaTeXRenderer) Extension() string { return ".tex" }

// Render implements Renderer
func (r *LaTeXRenderer) Render(_ context.Context, record types.ResumeRecord, _ string) ([]byte, error) {
	tmpl, err := r.template()
	if err != nil {
		return nil, err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, BuildTemplateData(record)); err != nil {
		return nil, &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return []byte(result.String()), nil
}

func (r *LaTeXRenderer) template() (*template.Template, error) {
	r.once.Do(func() {
		content := defaultLaTeXTemplate
		if r.templatePath != "" {
			data, err := os.ReadFile(r.templatePath)
			if err != nil {
				if os.IsNotExist(err) {
					r.err = &TemplateError{Message: fmt.Sprintf("template file not found: %s", r.templatePath), Cause: err}
				} else {
					r.err = &TemplateError{Message: fmt.Sprintf("failed to read template file: %s", r.templatePath), Cause: err}
				}
				return
			}
			content = string(data)
		}
		r.tmpl, r.err = parseLaTeXTemplate(content)
	})
	return r.tmpl, r.err
}

func parseLaTeXTemplate(content string) (*template.Template, error) {
	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
		"join":   strings.Join,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// BuildTemplateData escapes the record into template form
func BuildTemplateData(record types.ResumeRecord) *TemplateData {
	info := record.PersonalInfo
	var contact []string
	for _, c := range []string{info.Email, info.Phone, info.Location, info.LinkedIn, info.Website} {
		if c != "" {
			contact = append(contact, EscapeLaTeX(c))
		}
	}

	data := &TemplateData{
		Name:      EscapeLaTeX(info.Name),
		Contact:   contact,
		Summary:   EscapeLaTeX(record.Summary),
		Companies: groupByCompanyAndRole(record.Experience),
	}

	for _, edu := range record.Education {
		var detail []string
		if edu.Location != "" {
			detail = append(detail, EscapeLaTeX(edu.Location))
		}
		if edu.GPA != "" {
			detail = append(detail, "GPA "+EscapeLaTeX(edu.GPA))
		}
		data.Education = append(data.Education, EducationLine{
			Degree:      EscapeLaTeX(edu.Degree),
			Institution: EscapeLaTeX(edu.Institution),
			Detail:      strings.Join(detail, ", "),
			Date:        EscapeLaTeX(edu.GraduationDate),
		})
	}
	for _, s := range record.Skills {
		data.Skills = append(data.Skills, SkillLine{Category: EscapeLaTeX(s.Category), Items: escapeAll(s.Items)})
	}
	for _, p := range record.Projects {
		data.Projects = append(data.Projects, ProjectLine{
			Name:         EscapeLaTeX(p.Name),
			Description:  EscapeLaTeX(p.Description),
			Technologies: escapeAll(p.Technologies),
			URL:          EscapeLaTeX(p.URL),
		})
	}
	for _, c := range record.Certifications {
		data.Certifications = append(data.Certifications, CertificationLine{
			Name:   EscapeLaTeX(c.Name),
			Issuer: EscapeLaTeX(c.Issuer),
			Date:   EscapeLaTeX(c.Date),
		})
	}
	return data
}

func escapeAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = EscapeLaTeX(item)
	}
	return out
}

// roleKey is used for grouping positions by company and role
type roleKey struct {
	Company string
	Role    string
}

// groupByCompanyAndRole groups positions by company, then by title, merging date
// ranges. Companies and roles keep the order of their first position, so an
// already-sorted record stays most-recent-first.
func groupByCompanyAndRole(exps []types.Experience) []CompanySection {
	roleData := make(map[roleKey][]types.Experience)
	companyOrder := []string{}                    // Track order companies appear
	companyRoleOrder := make(map[string][]string) // Track order roles appear within each company
	companyLocation := make(map[string]string)
	seenRoles := make(map[roleKey]bool)

	for _, exp := range exps {
		key := roleKey{Company: exp.Company, Role: exp.Title}

		if _, seen := companyRoleOrder[exp.Company]; !seen {
			companyOrder = append(companyOrder, exp.Company)
			companyRoleOrder[exp.Company] = nil
		}
		if !seenRoles[key] {
			seenRoles[key] = true
			companyRoleOrder[exp.Company] = append(companyRoleOrder[exp.Company], exp.Title)
		}
		if companyLocation[exp.Company] == "" {
			companyLocation[exp.Company] = exp.Location
		}
		roleData[key] = append(roleData[key], exp)
	}

	companies := make([]CompanySection, 0, len(companyOrder))
	for _, company := range companyOrder {
		section := CompanySection{
			Company:  EscapeLaTeX(company),
			Location: EscapeLaTeX(companyLocation[company]),
		}
		for _, role := range companyRoleOrder[company] {
			entries := roleData[roleKey{Company: company, Role: role}]

			var bullets []string
			for _, exp := range entries {
				for _, line := range exp.Description {
					bullets = append(bullets, EscapeLaTeX(StripBullet(line)))
				}
			}

			section.Roles = append(section.Roles, RoleSection{
				Role:       EscapeLaTeX(role),
				DateRanges: mergeDateRanges(entries),
				Bullets:    bullets,
			})
		}
		companies = append(companies, section)
	}
	return companies
}

// mergeDateRanges formats the unique date ranges of entries as a comma-separated string
func mergeDateRanges(entries []types.Experience) string {
	seen := make(map[string]bool)
	var parts []string
	for _, exp := range entries {
		if exp.StartDate == "" && exp.EndDate == "" {
			continue
		}

		var part string
		switch {
		case enhance.IsPresent(exp.EndDate):
			part = EscapeLaTeX(exp.StartDate) + " -- Present"
		case exp.EndDate == "":
			part = EscapeLaTeX(exp.StartDate)
		default:
			part = EscapeLaTeX(exp.StartDate) + " -- " + EscapeLaTeX(exp.EndDate)
		}

		if !seen[part] {
			seen[part] = true
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
