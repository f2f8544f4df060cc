package projects

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Project is a portfolio entry. Column and JSON names follow the public API
// consumed by the static site and admin page.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p" json:"-"`

	ID                    uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug                  string    `bun:"slug,notnull" json:"slug"`
	Title                 string    `bun:"title,notnull" json:"title"`
	ShortDescription      string    `bun:"short_description,nullzero" json:"short_description"`
	FullDescription       string    `bun:"full_description,nullzero" json:"full_description"`
	Technologies          string    `bun:"technologies,nullzero" json:"technologies"`
	GithubURL             string    `bun:"github_url,nullzero" json:"github_url"`
	LiveDemoURL           string    `bun:"live_demo_url,nullzero" json:"live_demo_url"`
	Category              string    `bun:"category,nullzero" json:"category"`
	Status                string    `bun:"status,notnull" json:"status"`
	ImagePath             string    `bun:"image_path,nullzero" json:"image_path"`
	CoverImagePath        string    `bun:"cover_image_path,nullzero" json:"cover_image_path"`
	AdditionalImagesPaths string    `bun:"additional_images_paths,nullzero" json:"additional_images_paths"`
	DemoVideoPath         string    `bun:"demo_video_path,nullzero" json:"demo_video_path"`
	ImpactMetrics         string    `bun:"impact_metrics,nullzero" json:"impact_metrics"`
	CreatedDate           time.Time `bun:"created_date,notnull" json:"created_date"`
	UpdatedDate           time.Time `bun:"updated_date,nullzero" json:"updated_date"`
}

// AdditionalImages splits the stored comma separated list, dropping blanks.
func (p *Project) AdditionalImages() []string {
	return SplitList(p.AdditionalImagesPaths)
}

// TechnologyList splits the stored comma separated technologies.
func (p *Project) TechnologyList() []string {
	return SplitList(p.Technologies)
}

// MediaPaths lists every stored media reference of the project.
func (p *Project) MediaPaths() []string {
	var paths []string
	for _, path := range []string{p.ImagePath, p.CoverImagePath, p.DemoVideoPath} {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	return append(paths, p.AdditionalImages()...)
}

// SplitList splits a comma separated column value and trims each entry.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MediaUpload carries paths of freshly stored files. Empty fields mean "no
// file was uploaded" and leave the stored value untouched on update.
type MediaUpload struct {
	CoverImage       string
	AdditionalImages []string
	DemoVideo        string
}

// Empty reports whether no file was uploaded.
func (m MediaUpload) Empty() bool {
	return m.CoverImage == "" && len(m.AdditionalImages) == 0 && m.DemoVideo == ""
}

// Paths lists every uploaded path.
func (m MediaUpload) Paths() []string {
	var paths []string
	if m.CoverImage != "" {
		paths = append(paths, m.CoverImage)
	}
	paths = append(paths, m.AdditionalImages...)
	if m.DemoVideo != "" {
		paths = append(paths, m.DemoVideo)
	}
	return paths
}

// Fields are the editable text columns shared by create and update.
type Fields struct {
	Title            string `json:"title"`
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`
	Technologies     string `json:"technologies"`
	GithubURL        string `json:"github_url"`
	LiveDemoURL      string `json:"live_demo_url"`
	Category         string `json:"category"`
	Status           string `json:"status"`
	ImpactMetrics    string `json:"impact_metrics"`
}

// CreateProjectRequest describes a new project. Slug is optional and derived
// from the title when empty.
type CreateProjectRequest struct {
	Fields
	Slug  string      `json:"slug,omitempty"`
	Media MediaUpload `json:"-"`
}

// UpdateProjectRequest replaces the text fields of an existing project.
type UpdateProjectRequest struct {
	ID uuid.UUID `json:"id"`
	Fields
	Media MediaUpload `json:"-"`
}
