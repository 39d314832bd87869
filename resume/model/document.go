package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Document is the structured resume the model is asked to fill.
type Document struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Skills       Skills       `json:"skills"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Projects     []Project    `json:"projects"`
}

// PersonalInfo captures identity and contact details.
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
}

// Skills groups short skill tags by category.
type Skills struct {
	Languages     []string `json:"languages"`
	Frameworks    []string `json:"frameworks"`
	Databases     []string `json:"databases"`
	CloudDevOps   []string `json:"cloudDevOps"`
	Tools         []string `json:"tools"`
	Methodologies []string `json:"methodologies"`
}

type Education struct {
	University string   `json:"university"`
	Degree     string   `json:"degree"`
	Location   string   `json:"location"`
	DateRange  string   `json:"dateRange"`
	Coursework []string `json:"coursework"`
}

type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	DateRange    string   `json:"dateRange"`
	Achievements []string `json:"achievements"`
}

type Project struct {
	Name      string   `json:"name"`
	DateRange string   `json:"dateRange"`
	Details   []string `json:"details"`
}

// SkillCategory pairs a display label with its tags, in display order.
type SkillCategory struct {
	Label string
	Tags  []string
}

// Categories returns the six skill groups in display order.
func (s Skills) Categories() []SkillCategory {
	return []SkillCategory{
		{Label: "Languages", Tags: s.Languages},
		{Label: "Frameworks", Tags: s.Frameworks},
		{Label: "Databases", Tags: s.Databases},
		{Label: "Cloud/DevOps", Tags: s.CloudDevOps},
		{Label: "Tools", Tags: s.Tools},
		{Label: "Methodologies", Tags: s.Methodologies},
	}
}

// Blank returns the example object embedded in the system prompt:
// blank leaves, empty tag lists and one blank entry per section.
func Blank() Document {
	return Document{
		Skills: Skills{
			Languages:     []string{},
			Frameworks:    []string{},
			Databases:     []string{},
			CloudDevOps:   []string{},
			Tools:         []string{},
			Methodologies: []string{},
		},
		Education:  []Education{{Coursework: []string{}}},
		Experience: []Experience{{Achievements: []string{}}},
		Projects:   []Project{{Details: []string{}}},
	}
}

// BlankJSON renders Blank as 2-space indented JSON.
func BlankJSON() (string, error) {
	raw, err := json.MarshalIndent(Blank(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ErrNotObject is returned by Parse for null, arrays and scalars.
var ErrNotObject = errors.New("resume is not a JSON object")

// Parse decodes a buffer into a Document. Missing fields stay zero.
func Parse(text string) (Document, error) {
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return Document{}, ErrNotObject
	}
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// StreamedError returns the message of an {"error": "..."} payload, which the generation
// endpoint streams in place of a resume when it fails.
func StreamedError(text string) (string, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &payload); err != nil || len(payload) != 1 {
		return "", false
	}
	raw, ok := payload["error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", false
	}
	return msg, true
}

var dateRangePattern = regexp.MustCompile(`^[A-Z][a-z]{2} \d{4} - ([A-Z][a-z]{2} \d{4}|Present)$`)

// IsDateRange reports whether s is "MMM YYYY - MMM YYYY" (or "... - Present").
func IsDateRange(s string) bool {
	return dateRangePattern.MatchString(strings.TrimSpace(s))
}

// DateIssues lists date ranges that do not follow the requested format.
func (d Document) DateIssues() []string {
	var issues []string
	check := func(value, field string) {
		if strings.TrimSpace(value) == "" || IsDateRange(value) {
			return
		}
		issues = append(issues, fmt.Sprintf("%s %q is not MMM YYYY - MMM YYYY", field, value))
	}
	for i, e := range d.Education {
		check(e.DateRange, fmt.Sprintf("education[%d].dateRange", i))
	}
	for i, e := range d.Experience {
		check(e.DateRange, fmt.Sprintf("experience[%d].dateRange", i))
	}
	for i, p := range d.Projects {
		check(p.DateRange, fmt.Sprintf("projects[%d].dateRange", i))
	}
	return issues
}

// ProfileHandle returns the last path segment of a profile URL,
// e.g. "https://github.com/jdoe/" -> "jdoe". Non-URLs are returned trimmed.
func ProfileHandle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return raw
	}
	return path
}

// Href returns raw as a link target, adding https:// when no scheme is present.
func Href(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}
