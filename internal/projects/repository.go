package projects

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, record *Project) (*Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, record *Project) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewProjectRepository builds the generic go-repository-bun repository keyed
// by id with slug as the natural identifier.
func NewProjectRepository(db *bun.DB) repository.Repository[*Project] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Project]{
		NewRecord: func() *Project { return &Project{} },
		GetID: func(p *Project) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Project, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Project) string {
			return p.Slug
		},
	})
}
