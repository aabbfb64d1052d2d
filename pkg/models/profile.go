package models

import "fmt"

// Profile is the static user profile loaded from profile.yaml. It is
// read-only during a pipeline run.
type Profile struct {
	Personal    Personal     `yaml:"personal"`
	Education   []Education  `yaml:"education"`
	Experiences []Experience `yaml:"experiences"`
	Projects    []Project    `yaml:"projects"`
	Skills      Skills       `yaml:"skills"`
}

type Personal struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Location string `yaml:"location"`
	LinkedIn string `yaml:"linkedin"`
	Github   string `yaml:"github"`
	Website  string `yaml:"website"`
	Summary  string `yaml:"summary"`
}

type Education struct {
	Institution string `yaml:"institution"`
	Degree      string `yaml:"degree"`
	Dates       string `yaml:"dates"`
	Location    string `yaml:"location"`
}

type Experience struct {
	Company  string   `yaml:"company"`
	Role     string   `yaml:"role"`
	Dates    string   `yaml:"dates"`
	Location string   `yaml:"location"`
	Bullets  []string `yaml:"bullets"`
}

type Project struct {
	Name    string   `yaml:"name"`
	Role    string   `yaml:"role"`
	Dates   string   `yaml:"dates"`
	Bullets []string `yaml:"bullets"`
}

type Skills struct {
	Languages    []string `yaml:"languages"`
	Technologies []string `yaml:"technologies"`
}

// Experience item categories.
const (
	CategoryExperience = "experience"
	CategoryProject    = "project"
)

// ExperienceItem is one bullet point from the profile with a stable
// identifier. IDs are derived from the owning section and bullet position,
// so they stay stable as long as the profile file does not reorder entries.
type ExperienceItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Role     string `json:"role"`
	Category string `json:"category"`
}

// Bullets flattens the profile into the experience corpus, in document
// order. This order is the tie-breaker for equal match scores.
func (p *Profile) Bullets() []ExperienceItem {
	var items []ExperienceItem
	for _, exp := range p.Experiences {
		for i, b := range exp.Bullets {
			items = append(items, ExperienceItem{
				ID:       fmt.Sprintf("%s#%d", exp.Company, i),
				Text:     b,
				Source:   exp.Company,
				Role:     exp.Role,
				Category: CategoryExperience,
			})
		}
	}
	for _, proj := range p.Projects {
		for i, b := range proj.Bullets {
			items = append(items, ExperienceItem{
				ID:       fmt.Sprintf("%s#%d", proj.Name, i),
				Text:     b,
				Source:   proj.Name,
				Role:     proj.Role,
				Category: CategoryProject,
			})
		}
	}
	return items
}
