package showcase

import (
	"context"
	"strings"

	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	// CardHighlightLimit is how many impact metrics a card shows.
	CardHighlightLimit = 3

	// NoDescription is shown when a project has neither description.
	NoDescription = "No detailed description available"

	defaultCategory = "Data Analytics"
	defaultLabel    = "Impact"
)

var defaultImages = map[string]string{
	"Data Analytics":   "https://images.unsplash.com/photo-1522778119026-d647f0596c20?w=800&auto=format&fit=crop",
	"Machine Learning": "https://images.unsplash.com/photo-1466611653911-95081537e5b7?w=800&auto=format&fit=crop",
	"Web Development":  "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=800&auto=format&fit=crop",
}

// DefaultImage returns the stock image used for category when a project
// has no cover of its own.
func DefaultImage(category string) string {
	if image, ok := defaultImages[category]; ok {
		return image
	}
	return defaultImages[defaultCategory]
}

// Builder turns stored projects into presentation models.
type Builder struct {
	renderer interfaces.MarkdownRenderer
	baseURL  string
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithBaseURL sets the origin relative media paths are joined onto.
func WithBaseURL(baseURL string) BuilderOption {
	return func(b *Builder) {
		b.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// NewBuilder returns a builder that renders Markdown descriptions with
// renderer.
func NewBuilder(renderer interfaces.MarkdownRenderer, opts ...BuilderOption) *Builder {
	b := &Builder{renderer: renderer}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// ResolveURL leaves absolute http(s) URLs untouched and joins anything else
// onto the configured base URL.
func (b *Builder) ResolveURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// CoverURL picks the cover image, then the legacy image path, then the
// category default.
func (b *Builder) CoverURL(p *projects.Project) string {
	for _, candidate := range []string{p.CoverImagePath, p.ImagePath} {
		if url := b.ResolveURL(candidate); url != "" {
			return url
		}
	}
	return DefaultImage(p.Category)
}

// Card builds the grid summary of p.
func (b *Builder) Card(p *projects.Project) Card {
	metrics := ParseMetrics(p.ImpactMetrics)
	if len(metrics) > CardHighlightLimit {
		metrics = metrics[:CardHighlightLimit]
	}

	alt := p.Category
	if alt == "" {
		alt = p.Title
	}

	technologies := p.TechnologyList()
	if technologies == nil {
		technologies = []string{}
	}

	return Card{
		ID:                 p.ID,
		Slug:               p.Slug,
		Title:              p.Title,
		Excerpt:            markdown.Excerpt(p.ShortDescription),
		Technologies:       technologies,
		Category:           p.Category,
		Status:             p.Status,
		ImageURL:           b.CoverURL(p),
		FallbackImageURL:   DefaultImage(p.Category),
		AltText:            alt,
		GithubURL:          p.GithubURL,
		LiveDemoURL:        p.LiveDemoURL,
		Highlights:         metrics,
		HasFullDescription: strings.TrimSpace(p.FullDescription) != "",
	}
}

// Description returns the HTML shown in the detail view.
func (b *Builder) Description(ctx context.Context, p *projects.Project) string {
	if markdown.LooksLikeMarkdown(p.FullDescription) && b.renderer != nil {
		return b.renderer.Render(ctx, p.FullDescription)
	}
	for _, candidate := range []string{p.FullDescription, p.ShortDescription} {
		if candidate != "" {
			return candidate
		}
	}
	return NoDescription
}

// Detail builds the full view of p.
func (b *Builder) Detail(ctx context.Context, p *projects.Project) Detail {
	images := make([]string, 0)
	for _, path := range p.AdditionalImages() {
		images = append(images, b.ResolveURL(path))
	}

	return Detail{
		Card:                b.Card(p),
		DescriptionHTML:     b.Description(ctx, p),
		AdditionalImageURLs: images,
		DemoVideoURL:        b.ResolveURL(p.DemoVideoPath),
		ImpactMetrics:       ParseMetrics(p.ImpactMetrics),
		CreatedDate:         p.CreatedDate,
		UpdatedDate:         p.UpdatedDate,
	}
}

// ParseMetrics splits the comma separated impact metrics column.
func ParseMetrics(raw string) []Metric {
	entries := projects.SplitList(raw)
	metrics := make([]Metric, 0, len(entries))
	for _, entry := range entries {
		label, value, ok := strings.Cut(entry, ":")
		if !ok {
			metrics = append(metrics, Metric{Label: defaultLabel, Value: entry})
			continue
		}
		metrics = append(metrics, Metric{
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}
	return metrics
}
