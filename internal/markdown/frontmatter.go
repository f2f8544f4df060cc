package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"github.com/zeebo/blake3"

	"github.com/goliatone/go-portfolio/internal/projects"
)

var (
	ErrTitleMissing = errors.New("markdown: front matter title is required")
	ErrSlugInvalid  = errors.New("markdown: document slug is invalid")
)

// ProjectDocument is a Markdown file describing one project: metadata in the
// front matter, the long description in the body.
type ProjectDocument struct {
	Path     string
	Slug     string
	Fields   projects.Fields
	Media    projects.MediaUpload
	Checksum []byte
}

type projectFrontMatter struct {
	Title            string   `yaml:"title" toml:"title" json:"title"`
	Slug             string   `yaml:"slug" toml:"slug" json:"slug"`
	Summary          string   `yaml:"summary" toml:"summary" json:"summary"`
	Category         string   `yaml:"category" toml:"category" json:"category"`
	Status           string   `yaml:"status" toml:"status" json:"status"`
	Technologies     []string `yaml:"technologies" toml:"technologies" json:"technologies"`
	GithubURL        string   `yaml:"github_url" toml:"github_url" json:"github_url"`
	LiveDemoURL      string   `yaml:"live_demo_url" toml:"live_demo_url" json:"live_demo_url"`
	ImpactMetrics    []string `yaml:"impact_metrics" toml:"impact_metrics" json:"impact_metrics"`
	CoverImage       string   `yaml:"cover_image" toml:"cover_image" json:"cover_image"`
	AdditionalImages []string `yaml:"additional_images" toml:"additional_images" json:"additional_images"`
	DemoVideo        string   `yaml:"demo_video" toml:"demo_video" json:"demo_video"`
}

// ParseProjectDocument reads YAML, TOML or JSON front matter from source. The
// slug defaults to the file name without extension and is normalised the
// same way the project service normalises slugs. Checksum is the blake3 sum
// of source.
func ParseProjectDocument(filePath string, source []byte) (*ProjectDocument, error) {
	var meta projectFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("markdown: parse front matter %s: %w", filePath, err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: %s", ErrTitleMissing, filePath)
	}

	rawSlug := strings.TrimSpace(meta.Slug)
	if rawSlug == "" {
		base := path.Base(filePathToSlash(filePath))
		rawSlug = strings.TrimSuffix(base, path.Ext(base))
	}
	docSlug, err := slug.Normalize(rawSlug)
	if err != nil || !slug.IsValid(docSlug) {
		return nil, fmt.Errorf("%w: %s: %q", ErrSlugInvalid, filePath, rawSlug)
	}

	sum := blake3.Sum256(source)
	return &ProjectDocument{
		Path: filePath,
		Slug: docSlug,
		Fields: projects.Fields{
			Title:            meta.Title,
			ShortDescription: meta.Summary,
			FullDescription:  strings.TrimSpace(normalizeNewlines(string(body))),
			Technologies:     joinList(meta.Technologies),
			GithubURL:        meta.GithubURL,
			LiveDemoURL:      meta.LiveDemoURL,
			Category:         meta.Category,
			Status:           meta.Status,
			ImpactMetrics:    joinList(meta.ImpactMetrics),
		},
		Media: projects.MediaUpload{
			CoverImage:       strings.TrimSpace(meta.CoverImage),
			AdditionalImages: projects.SplitList(joinList(meta.AdditionalImages)),
			DemoVideo:        strings.TrimSpace(meta.DemoVideo),
		},
		Checksum: sum[:],
	}, nil
}

func joinList(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}

func filePathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
