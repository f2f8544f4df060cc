package projectscmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/google/uuid"
)

const (
	deleteProjectMessageType  = "portfolio.projects.delete"
	cleanupUploadsMessageType = "portfolio.uploads.cleanup"
	importProjectsMessageType = "portfolio.projects.import"
)

// DeleteProjectCommand removes one project record.
type DeleteProjectCommand struct {
	ID uuid.UUID `json:"id"`
}

// Type implements command.Message.
func (DeleteProjectCommand) Type() string { return deleteProjectMessageType }

// Validate ensures a project id is present.
func (cmd DeleteProjectCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return validation.NewError("portfolio.projects.delete.id_required", "project id is required")
			}
			return nil
		})),
	)
}

// CleanupUploadsCommand prunes stored uploads that no project references.
// MinAge, when set, overrides the handler's grace window. Result, when set,
// receives the outcome.
type CleanupUploadsCommand struct {
	DryRun bool               `json:"dry_run,omitempty"`
	MinAge *time.Duration     `json:"min_age,omitempty"`
	Result *media.PruneResult `json:"-"`
}

// Type implements command.Message.
func (CleanupUploadsCommand) Type() string { return cleanupUploadsMessageType }

// Validate rejects a negative grace window.
func (cmd CleanupUploadsCommand) Validate() error {
	if cmd.MinAge != nil && *cmd.MinAge < 0 {
		return validation.Errors{
			"min_age": validation.NewError("portfolio.uploads.cleanup.min_age_negative", "min age must not be negative"),
		}
	}
	return nil
}

// ImportProjectsCommand imports Markdown project documents with front matter
// from Directory. Result, when set, receives the outcome.
type ImportProjectsCommand struct {
	Directory string                 `json:"directory"`
	Pattern   string                 `json:"pattern,omitempty"`
	Recursive bool                   `json:"recursive,omitempty"`
	DryRun    bool                   `json:"dry_run,omitempty"`
	Result    *markdown.ImportResult `json:"-"`
}

// Type implements command.Message.
func (ImportProjectsCommand) Type() string { return importProjectsMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportProjectsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("portfolio.projects.import.directory_required", "directory is required")
			}
			return nil
		})),
	)
}
