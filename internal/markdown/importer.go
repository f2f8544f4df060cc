package markdown

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var ErrProjectServiceRequired = errors.New("markdown importer: project service is required")

// ImportOptions controls a directory import.
type ImportOptions struct {
	LoadOptions
	DryRun bool
}

// ImportResult reports what an import did, keyed by project id. Skipped
// holds slugs that were unchanged or would have been written in a dry run.
type ImportResult struct {
	Created []uuid.UUID
	Updated []uuid.UUID
	Skipped []string
	Errors  []error
}

// Err joins every per-document failure.
func (r *ImportResult) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Importer creates or updates projects from Markdown documents, matching
// existing projects by slug.
type Importer struct {
	projects   projects.Service
	logger     interfaces.Logger
	shortLimit int
}

// ImporterOption customises an Importer.
type ImporterOption func(*Importer)

// WithShortDescriptionLimit matches the project service limit so unchanged
// documents with long summaries are recognised as unchanged.
func WithShortDescriptionLimit(limit int) ImporterOption {
	return func(i *Importer) {
		if limit > 0 {
			i.shortLimit = limit
		}
	}
}

func NewImporter(service projects.Service, logger interfaces.Logger, opts ...ImporterOption) *Importer {
	importer := &Importer{
		projects:   service,
		logger:     logging.Ensure(logger),
		shortLimit: projects.DefaultShortDescriptionLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(importer)
		}
	}
	return importer
}

// ImportDirectory loads dir from fsys and imports every parsed document.
func (i *Importer) ImportDirectory(ctx context.Context, fsys fs.FS, dir string, opts ImportOptions) (*ImportResult, error) {
	if i.projects == nil {
		return nil, ErrProjectServiceRequired
	}
	docs, parseErrs, err := LoadDirectory(ctx, fsys, dir, opts.LoadOptions)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: parseErrs}
	for _, doc := range docs {
		if err := i.importOne(ctx, doc, opts.DryRun, result); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	logging.WithFields(i.logger, map[string]any{
		"dir":     dir,
		"created": len(result.Created),
		"updated": len(result.Updated),
		"skipped": len(result.Skipped),
		"errors":  len(result.Errors),
		"dry_run": opts.DryRun,
	}).WithContext(ctx).Info("markdown.import.completed")
	return result, result.Err()
}

// ImportDocument imports a single parsed document.
func (i *Importer) ImportDocument(ctx context.Context, doc *ProjectDocument, dryRun bool) (*ImportResult, error) {
	if i.projects == nil {
		return nil, ErrProjectServiceRequired
	}
	if doc == nil {
		return nil, errors.New("markdown importer: document is nil")
	}
	result := &ImportResult{}
	if err := i.importOne(ctx, doc, dryRun, result); err != nil {
		result.Errors = append(result.Errors, err)
	}
	return result, result.Err()
}

func (i *Importer) importOne(ctx context.Context, doc *ProjectDocument, dryRun bool, result *ImportResult) error {
	logger := logging.WithFields(i.logger, map[string]any{
		"path":     doc.Path,
		"slug":     doc.Slug,
		"checksum": hex.EncodeToString(doc.Checksum),
	}).WithContext(ctx)

	existing, err := i.projects.GetBySlug(ctx, doc.Slug)
	switch {
	case projects.IsNotFound(err):
		if dryRun {
			logger.Debug("markdown.import.document.would_create")
			result.Skipped = append(result.Skipped, doc.Slug)
			return nil
		}
		created, createErr := i.projects.Create(ctx, projects.CreateProjectRequest{
			Fields: doc.Fields,
			Slug:   doc.Slug,
			Media:  doc.Media,
		})
		if createErr != nil {
			return fmt.Errorf("markdown importer: create %s: %w", doc.Path, createErr)
		}
		logger.Debug("markdown.import.document.created", "id", created.ID.String())
		result.Created = append(result.Created, created.ID)
		return nil
	case err != nil:
		return fmt.Errorf("markdown importer: lookup %s: %w", doc.Slug, err)
	}

	if unchanged(existing, doc, i.shortLimit) || dryRun {
		logger.Debug("markdown.import.document.skipped", "id", existing.ID.String())
		result.Skipped = append(result.Skipped, doc.Slug)
		return nil
	}

	updated, err := i.projects.Update(ctx, projects.UpdateProjectRequest{
		ID:     existing.ID,
		Fields: doc.Fields,
		Media:  doc.Media,
	})
	if err != nil {
		return fmt.Errorf("markdown importer: update %s: %w", doc.Path, err)
	}
	logger.Debug("markdown.import.document.updated", "id", updated.ID.String())
	result.Updated = append(result.Updated, updated.ID)
	return nil
}

func unchanged(p *projects.Project, doc *ProjectDocument, shortLimit int) bool {
	f := doc.Fields
	same := p.Title == strings.TrimSpace(f.Title) &&
		p.FullDescription == f.FullDescription &&
		p.Technologies == f.Technologies &&
		p.GithubURL == strings.TrimSpace(f.GithubURL) &&
		p.LiveDemoURL == strings.TrimSpace(f.LiveDemoURL) &&
		p.Category == strings.TrimSpace(f.Category) &&
		p.ImpactMetrics == f.ImpactMetrics &&
		p.ShortDescription == projects.TruncateShortDescription(strings.TrimSpace(f.ShortDescription), shortLimit)
	if !same {
		return false
	}
	if status := strings.ToLower(strings.TrimSpace(f.Status)); status != "" && status != p.Status {
		return false
	}
	m := doc.Media
	return (m.CoverImage == "" || m.CoverImage == p.CoverImagePath) &&
		(len(m.AdditionalImages) == 0 || strings.Join(m.AdditionalImages, ",") == p.AdditionalImagesPaths) &&
		(m.DemoVideo == "" || m.DemoVideo == p.DemoVideoPath)
}
