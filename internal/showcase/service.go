package showcase

import (
	"context"
	"strings"

	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Service serves presentation models backed by the project service.
type Service struct {
	projects projects.Service
	builder  *Builder
}

// NewService binds builder to the project service.
func NewService(projectService projects.Service, builder *Builder) *Service {
	return &Service{projects: projectService, builder: builder}
}

// Builder exposes the underlying presentation builder.
func (s *Service) Builder() *Builder {
	return s.builder
}

// Cards lists every project as a card, newest first. A non-empty query
// keeps only fuzzy matches on title, category and technologies, best match
// first.
func (s *Service) Cards(ctx context.Context, query string) ([]Card, error) {
	records, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	if query = strings.TrimSpace(query); query != "" {
		matches := fuzzy.FindFrom(query, searchSource(records))
		filtered := make([]*projects.Project, 0, len(matches))
		for _, match := range matches {
			filtered = append(filtered, records[match.Index])
		}
		records = filtered
	}

	cards := make([]Card, 0, len(records))
	for _, record := range records {
		cards = append(cards, s.builder.Card(record))
	}
	return cards, nil
}

// Detail returns the full view of one project.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (Detail, error) {
	record, err := s.projects.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.builder.Detail(ctx, record), nil
}

// Description returns only the rendered description of one project.
func (s *Service) Description(ctx context.Context, id uuid.UUID) (string, error) {
	record, err := s.projects.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.builder.Description(ctx, record), nil
}

type searchSource []*projects.Project

func (s searchSource) Len() int { return len(s) }

func (s searchSource) String(i int) string {
	p := s[i]
	return strings.Join([]string{p.Title, p.Category, p.Technologies}, " ")
}
