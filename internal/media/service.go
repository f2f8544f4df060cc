package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// DefaultMaxFileSize is the per-file upload limit (50 MiB).
const DefaultMaxFileSize int64 = 50 << 20

var (
	// ErrUnexpectedField reports a file sent under a field no slot accepts.
	ErrUnexpectedField = errors.New("media: unexpected file field")
	// ErrTooManyFiles reports more files than a slot accepts.
	ErrTooManyFiles = errors.New("media: too many files")
	// ErrFileTooLarge reports a file above the configured size limit.
	ErrFileTooLarge = errors.New("media: file too large")
)

// Limits bounds what a single request may upload.
type Limits struct {
	MaxFileSize         int64
	MaxAdditionalImages int
}

// DefaultLimits returns the upload limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:         DefaultMaxFileSize,
		MaxAdditionalImages: DefaultMaxAdditionalImages,
	}
}

// Service validates and stores project uploads.
type Service interface {
	Validate(form *multipart.Form) error
	Store(ctx context.Context, form *multipart.Form) (projects.MediaUpload, []Attachment, error)
	Prune(ctx context.Context, keep []string, opts PruneOptions) (PruneResult, error)
	Limits() Limits
	Dir() string
}

// ServiceOption customises the upload service behaviour.
type ServiceOption func(*service)

// WithLimits overrides the default upload limits. Zero values keep defaults.
func WithLimits(limits Limits) ServiceOption {
	return func(s *service) {
		if limits.MaxFileSize > 0 {
			s.limits.MaxFileSize = limits.MaxFileSize
		}
		if limits.MaxAdditionalImages > 0 {
			s.limits.MaxAdditionalImages = limits.MaxAdditionalImages
		}
	}
}

// WithLogger routes upload diagnostics to logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	store  *LocalStore
	limits Limits
	logger interfaces.Logger
}

// NewService wraps store with validation and logging.
func NewService(store *LocalStore, opts ...ServiceOption) Service {
	s := &service{
		store:  store,
		limits: DefaultLimits(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Limits() Limits { return s.limits }

func (s *service) Dir() string { return s.store.Dir() }

// Validate checks field names, file counts and sizes without touching disk.
func (s *service) Validate(form *multipart.Form) error {
	if form == nil {
		return nil
	}
	slots := ProjectSlots(s.limits.MaxAdditionalImages)
	for field, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		slot, ok := slots[field]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedField, field)
		}
		if len(headers) > slot.MaxFiles {
			return fmt.Errorf("%w: %s accepts %d", ErrTooManyFiles, field, slot.MaxFiles)
		}
		for _, header := range headers {
			if header.Size > s.limits.MaxFileSize {
				return fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, header.Filename, header.Size)
			}
		}
	}
	return nil
}

// Store validates form and writes every file. When one write fails the
// files already written by this call are removed again.
func (s *service) Store(ctx context.Context, form *multipart.Form) (projects.MediaUpload, []Attachment, error) {
	if err := s.Validate(form); err != nil {
		return projects.MediaUpload{}, nil, err
	}
	if form == nil {
		return projects.MediaUpload{}, nil, nil
	}

	var attachments []Attachment
	rollback := func() {
		for _, attachment := range attachments {
			_ = s.store.Remove(context.WithoutCancel(ctx), attachment.Path)
		}
	}

	for _, field := range ProjectSlots(s.limits.MaxAdditionalImages).Fields() {
		for _, header := range form.File[field] {
			attachment, err := s.storeOne(ctx, field, header)
			if err != nil {
				rollback()
				s.logger.Error("media.upload.failed", "field", field, "filename", header.Filename, "error", err)
				return projects.MediaUpload{}, nil, err
			}
			s.logger.Debug("media.upload.file_stored",
				"field", field,
				"path", attachment.Path,
				"size", attachment.Size,
				"checksum", attachment.Checksum,
			)
			attachments = append(attachments, attachment)
		}
	}

	if len(attachments) > 0 {
		s.logger.Info("media.upload.stored", "count", len(attachments))
	}
	return ToMediaUpload(attachments), attachments, nil
}

func (s *service) storeOne(ctx context.Context, field string, header *multipart.FileHeader) (Attachment, error) {
	file, err := header.Open()
	if err != nil {
		return Attachment{}, fmt.Errorf("media: open %s: %w", header.Filename, err)
	}
	defer file.Close()

	stored, err := s.store.Save(ctx, header.Filename, file)
	if err != nil {
		return Attachment{}, err
	}
	if stored.Size > s.limits.MaxFileSize {
		_ = s.store.Remove(ctx, stored.Path)
		return Attachment{}, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, header.Filename, stored.Size)
	}

	return Attachment{
		Field:        field,
		OriginalName: header.Filename,
		Name:         stored.Name,
		Path:         stored.Path,
		Size:         stored.Size,
		ContentType:  header.Header.Get("Content-Type"),
		Checksum:     stored.Checksum,
	}, nil
}

// Prune removes stored files that are not referenced by keep.
func (s *service) Prune(ctx context.Context, keep []string, opts PruneOptions) (PruneResult, error) {
	result, err := s.store.Prune(ctx, keep, opts)
	if err != nil {
		s.logger.Error("media.prune.failed", "error", err)
		return result, err
	}
	s.logger.Info("media.prune.completed",
		"removed", len(result.Removed),
		"kept", result.Kept,
		"recent", result.Recent,
		"dry_run", opts.DryRun,
	)
	return result, nil
}
