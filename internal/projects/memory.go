package projects

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memoryProjectRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Project
	bySlug map[string]uuid.UUID
}

// NewMemoryProjectRepository returns a process-local repository used by the
// "memory" database driver and by tests.
func NewMemoryProjectRepository() ProjectRepository {
	return &memoryProjectRepository{
		byID:   make(map[uuid.UUID]*Project),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryProjectRepository) Create(_ context.Context, record *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.bySlug[record.Slug]; taken {
		return nil, ErrSlugConflict
	}
	cloned := cloneProject(record)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return cloneProject(cloned), nil
}

func (m *memoryProjectRepository) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	return cloneProject(record), nil
}

func (m *memoryProjectRepository) GetBySlug(_ context.Context, slug string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: slug}
	}
	return cloneProject(m.byID[id]), nil
}

// List orders newest first, breaking ties by title for stable output.
func (m *memoryProjectRepository) List(_ context.Context) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Project, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneProject(record))
	}
	slices.SortFunc(records, func(a, b *Project) int {
		if c := b.CreatedDate.Compare(a.CreatedDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return records, nil
}

func (m *memoryProjectRepository) Update(_ context.Context, record *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: record.ID.String()}
	}
	if owner, taken := m.bySlug[record.Slug]; taken && owner != record.ID {
		return nil, ErrSlugConflict
	}
	delete(m.bySlug, existing.Slug)

	cloned := cloneProject(record)
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return cloneProject(cloned), nil
}

func (m *memoryProjectRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "project", Key: id.String()}
	}
	delete(m.bySlug, existing.Slug)
	delete(m.byID, id)
	return nil
}

func cloneProject(p *Project) *Project {
	if p == nil {
		return nil
	}
	cloned := *p
	return &cloned
}
