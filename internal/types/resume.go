// Package types provides type definitions for structured data used throughout the chat-resume system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DocumentKind is the artifact kind stored alongside a serialized ResumeRecord
const DocumentKind = "resume"

// PresentEndDate is the literal end date used for current positions
const PresentEndDate = "Present"

// ResumeRecord is the canonical structured résumé handed to renderers and persistence.
// JSON field names are the serialized storage format and must not change.
type ResumeRecord struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary" validate:"min=10"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Skills         []SkillCategory `json:"skills" validate:"dive"`
	Projects       []Project       `json:"projects,omitempty" validate:"omitempty,dive"`
	Certifications []Certification `json:"certifications,omitempty" validate:"omitempty,dive"`
}

// PersonalInfo holds contact details
type PersonalInfo struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

// Experience is a single position. EndDate is "Present" for current roles; an empty
// EndDate leaves the position ordered by its StartDate.
type Experience struct {
	Title       string   `json:"title" validate:"required"`
	Company     string   `json:"company" validate:"required"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate" validate:"required"`
	EndDate     string   `json:"endDate,omitempty"`
	Description []string `json:"description" validate:"min=1"`
}

// Education is a single degree entry
type Education struct {
	Degree         string `json:"degree" validate:"required"`
	Institution    string `json:"institution" validate:"required"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduationDate,omitempty"`
	GPA            string `json:"gpa,omitempty"`
}

// SkillCategory groups related skills under a heading
type SkillCategory struct {
	Category string   `json:"category" validate:"required"`
	Items    []string `json:"items" validate:"min=1"`
}

// Project is an optional portfolio entry
type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty" validate:"omitempty,url"`
}

// Certification is an optional credential entry
type Certification struct {
	Name   string `json:"name" validate:"required"`
	Issuer string `json:"issuer" validate:"required"`
	Date   string `json:"date,omitempty"`
}

// Clone returns a deep copy of the record so callers can transform it without
// aliasing the original slices.
func (r ResumeRecord) Clone() ResumeRecord {
	out := r
	if r.Experience != nil {
		out.Experience = make([]Experience, len(r.Experience))
		for i, exp := range r.Experience {
			exp.Description = cloneStrings(exp.Description)
			out.Experience[i] = exp
		}
	}
	if r.Education != nil {
		out.Education = make([]Education, len(r.Education))
		copy(out.Education, r.Education)
	}
	if r.Skills != nil {
		out.Skills = make([]SkillCategory, len(r.Skills))
		for i, s := range r.Skills {
			s.Items = cloneStrings(s.Items)
			out.Skills[i] = s
		}
	}
	if r.Projects != nil {
		out.Projects = make([]Project, len(r.Projects))
		for i, p := range r.Projects {
			p.Technologies = cloneStrings(p.Technologies)
			out.Projects[i] = p
		}
	}
	if r.Certifications != nil {
		out.Certifications = make([]Certification, len(r.Certifications))
		copy(out.Certifications, r.Certifications)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// FallbackRecord returns the minimal renderable record substituted for display when
// extraction could not produce a valid one.
func FallbackRecord() ResumeRecord {
	return ResumeRecord{
		PersonalInfo: PersonalInfo{
			Name: "Resume Generation Failed",
		},
		Summary:        "There was an error generating your resume. Please try again or provide more information in the conversation.",
		Experience:     []Experience{},
		Education:      []Education{},
		Skills:         []SkillCategory{},
		Projects:       []Project{},
		Certifications: []Certification{},
	}
}
