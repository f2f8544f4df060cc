package projects

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const projectNamespace = "project"

// BunProjectRepository implements ProjectRepository over bun with optional
// read-through caching.
type BunProjectRepository struct {
	repo         repository.Repository[*Project]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ ProjectRepository = (*BunProjectRepository)(nil)

func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return NewBunProjectRepositoryWithCache(db, nil, nil)
}

func NewBunProjectRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunProjectRepository {
	base := NewProjectRepository(db)
	out := &BunProjectRepository{repo: base}
	if cacheService != nil && serializer != nil {
		out.repo = repositorycache.New(base, cacheService, serializer)
		out.cacheService = cacheService
		out.cachePrefix = projectNamespace + cache.KeySeparator
	}
	return out
}

func (r *BunProjectRepository) Create(ctx context.Context, record *Project) (*Project, error) {
	if existing, err := r.GetBySlug(ctx, record.Slug); err == nil && existing != nil {
		return nil, ErrSlugConflict
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("project repository create: %w", err)
	}
	return created, r.InvalidateCache(ctx)
}

func (r *BunProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunProjectRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "project", Key: slug}
	}
	return records[0], nil
}

func (r *BunProjectRepository) List(ctx context.Context) ([]*Project, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_date DESC").OrderExpr("?TableAlias.title ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("project repository list: %w", err)
	}
	return records, nil
}

func (r *BunProjectRepository) Update(ctx context.Context, record *Project) (*Project, error) {
	if owner, err := r.GetBySlug(ctx, record.Slug); err == nil && owner.ID != record.ID {
		return nil, ErrSlugConflict
	}
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"slug",
			"title",
			"short_description",
			"full_description",
			"technologies",
			"github_url",
			"live_demo_url",
			"category",
			"status",
			"image_path",
			"cover_image_path",
			"additional_images_paths",
			"demo_video_path",
			"impact_metrics",
			"updated_date",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, record.ID.String())
	}
	return updated, r.InvalidateCache(ctx)
}

func (r *BunProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Project{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached project query.
func (r *BunProjectRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "project", Key: key}
	}
	return fmt.Errorf("project repository error: %w", err)
}
