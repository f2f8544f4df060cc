package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	DefaultShortDescriptionLimit = 1000
	truncationSuffix             = "..."
	fallbackSlug                 = "project"
)

// Service manages portfolio projects.
type Service interface {
	List(ctx context.Context) ([]*Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Create(ctx context.Context, req CreateProjectRequest) (*Project, error)
	Update(ctx context.Context, req UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReferencedPaths(ctx context.Context) ([]string, error)
}

// Config holds the validation and defaulting rules.
type Config struct {
	DefaultStatus           string
	RequireShortDescription bool
	ShortDescriptionLimit   int
}

// DefaultConfig mirrors the behaviour of the public API: short descriptions
// are required and capped at 1000 characters, new projects start "active".
func DefaultConfig() Config {
	return Config{
		DefaultStatus:           StatusActive,
		RequireShortDescription: true,
		ShortDescriptionLimit:   DefaultShortDescriptionLimit,
	}
}

// ServiceOption configures the project service.
type ServiceOption func(*service)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides uuid.New for new projects.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithConfig(cfg Config) ServiceOption {
	return func(s *service) {
		s.cfg = cfg
	}
}

type service struct {
	repo   ProjectRepository
	cfg    Config
	now    func() time.Time
	newID  func() uuid.UUID
	logger interfaces.Logger
}

func NewService(repo ProjectRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		cfg:    DefaultConfig(),
		now:    time.Now,
		newID:  uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if strings.TrimSpace(s.cfg.DefaultStatus) == "" {
		s.cfg.DefaultStatus = StatusActive
	}
	if s.cfg.ShortDescriptionLimit <= len(truncationSuffix) {
		s.cfg.ShortDescriptionLimit = DefaultShortDescriptionLimit
	}
	return s
}

func (s *service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Project, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(value))
}

func (s *service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	fields := normalizeFields(req.Fields)
	if err := s.validate(fields, true); err != nil {
		return nil, err
	}

	projectSlug, err := s.resolveSlug(ctx, req.Slug, fields.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Project{
		ID:          s.newID(),
		Slug:        projectSlug,
		CreatedDate: now,
		UpdatedDate: now,
	}
	s.applyFields(record, fields)
	if record.Status == "" {
		record.Status = s.cfg.DefaultStatus
	}
	applyMedia(record, req.Media)

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	logging.WithProjectContext(s.logger, created.ID.String(), created.Slug).
		WithContext(ctx).
		Info("projects.created", "title", created.Title, "media_files", len(req.Media.Paths()))
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdateProjectRequest) (*Project, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	fields := normalizeFields(req.Fields)
	if err := s.validate(fields, false); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	currentStatus := existing.Status
	s.applyFields(existing, fields)
	if existing.Status == "" {
		existing.Status = currentStatus
	}
	applyMedia(existing, req.Media)
	existing.UpdatedDate = s.now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	logging.WithProjectContext(s.logger, updated.ID.String(), updated.Slug).
		WithContext(ctx).
		Info("projects.updated", "media_replaced", !req.Media.Empty())
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.WithProjectContext(s.logger, id.String(), "").WithContext(ctx).Info("projects.deleted")
	return nil
}

// ReferencedPaths returns the sorted, de-duplicated media paths referenced by
// any project.
func (s *service) ReferencedPaths(ctx context.Context) ([]string, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, record := range records {
		paths = append(paths, record.MediaPaths()...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func (s *service) validate(fields Fields, creating bool) error {
	requireShort := creating && s.cfg.RequireShortDescription
	return validation.ValidateStruct(&fields,
		validation.Field(&fields.Title,
			validation.Required.ErrorObject(validation.NewError(CodeTitleRequired, "title is required")),
		),
		validation.Field(&fields.ShortDescription,
			validation.When(requireShort,
				validation.Required.ErrorObject(validation.NewError(CodeShortDescriptionRequired, "short description is required")),
			),
		),
		validation.Field(&fields.GithubURL, httpURL),
		validation.Field(&fields.LiveDemoURL, httpURL),
	)
}

var httpURL = validation.By(func(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return validation.NewError(CodeInvalidURL, "must be an http or https URL")
	}
	return nil
})

func (s *service) applyFields(record *Project, fields Fields) {
	record.Title = fields.Title
	record.ShortDescription = TruncateShortDescription(fields.ShortDescription, s.cfg.ShortDescriptionLimit)
	record.FullDescription = fields.FullDescription
	record.Technologies = fields.Technologies
	record.GithubURL = fields.GithubURL
	record.LiveDemoURL = fields.LiveDemoURL
	record.Category = fields.Category
	record.Status = fields.Status
	record.ImpactMetrics = fields.ImpactMetrics
}

func applyMedia(record *Project, media MediaUpload) {
	if media.CoverImage != "" {
		record.CoverImagePath = media.CoverImage
	}
	if len(media.AdditionalImages) > 0 {
		record.AdditionalImagesPaths = strings.Join(media.AdditionalImages, ",")
	}
	if media.DemoVideo != "" {
		record.DemoVideoPath = media.DemoVideo
	}
}

func normalizeFields(f Fields) Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.ShortDescription = strings.TrimSpace(f.ShortDescription)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.LiveDemoURL = strings.TrimSpace(f.LiveDemoURL)
	f.Category = strings.TrimSpace(f.Category)
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	return f
}

// TruncateShortDescription cuts value to limit characters, the last three
// being "...". Limits that leave no room for the suffix fall back to
// DefaultShortDescriptionLimit.
func TruncateShortDescription(value string, limit int) string {
	if limit <= len(truncationSuffix) {
		limit = DefaultShortDescriptionLimit
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-len(truncationSuffix)]) + truncationSuffix
}

func (s *service) resolveSlug(ctx context.Context, requested, title string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		normalized, err := slug.Normalize(requested)
		if err != nil || !slug.IsValid(normalized) {
			return "", validation.Errors{
				"slug": validation.NewError(CodeInvalidSlug, "slug is invalid"),
			}
		}
		if _, err := s.repo.GetBySlug(ctx, normalized); err == nil {
			return "", ErrSlugConflict
		} else if !IsNotFound(err) {
			return "", err
		}
		return normalized, nil
	}

	base, err := slug.Normalize(title)
	if err != nil || base == "" {
		base = fallbackSlug
	}
	for attempt := 1; ; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = base + "-" + strconv.Itoa(attempt)
		}
		_, err := s.repo.GetBySlug(ctx, candidate)
		if IsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("projects: resolve slug: %w", err)
		}
		if attempt > 1000 {
			return "", errors.Join(ErrSlugConflict, fmt.Errorf("projects: exhausted slug candidates for %q", base))
		}
	}
}
