package model

// Go models that match schema/cv.schema.json, used for validation and rendering.

type Meta struct {
	Name     string            `json:"name"`
	Headline string            `json:"headline"`
	Location string            `json:"location,omitempty"`
	Contact  map[string]string `json:"contact,omitempty"`
	Links    []string          `json:"links,omitempty"`
}

type Role struct {
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Period  string   `json:"period,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

type Project struct {
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Stack       string   `json:"stack,omitempty"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets,omitempty"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Period string `json:"period,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// CV is the document rendered by every template.
type CV struct {
	Meta           Meta              `json:"meta"`
	Summary        string            `json:"summary,omitempty"`
	Experience     []Role            `json:"experience"`
	Projects       []Project         `json:"projects,omitempty"`
	Education      []Education       `json:"education,omitempty"`
	Skills         []SkillGroup      `json:"skills,omitempty"`
	Publications   []string          `json:"publications,omitempty"`
	Certifications []Certification   `json:"certifications,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
}

// DefaultLabels are the section headings used when a CV carries none.
func DefaultLabels() map[string]string {
	return map[string]string{
		"summary":        "Summary",
		"experience":     "Experience",
		"projects":       "Projects",
		"education":      "Education",
		"skills":         "Skills",
		"publications":   "Publications",
		"certifications": "Certifications",
	}
}

// Label returns the heading for a section, falling back to DefaultLabels.
func (cv *CV) Label(key string) string {
	if l, ok := cv.Labels[key]; ok && l != "" {
		return l
	}
	return DefaultLabels()[key]
}
