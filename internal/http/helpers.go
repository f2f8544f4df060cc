package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
)

// Messages returned to clients. They match what the admin page and the
// dynamic project loader already display.
const (
	msgProjectNotFound  = "Project not found"
	msgFetchProjects    = "Failed to fetch projects"
	msgFetchProject     = "Failed to fetch project"
	msgCreateProject    = "Failed to create project"
	msgUpdateProject    = "Failed to update project"
	msgDeleteProject    = "Failed to delete project"
	msgRenderMarkdown   = "Failed to render markdown"
	msgInvalidID        = "Invalid project id"
	msgInvalidProject   = "Title and short description are required"
	msgSlugConflict     = "Project slug already exists"
	msgUploadTooLarge   = "Upload exceeds the allowed size or file count"
	msgUnexpectedUpload = "Unexpected upload field"
	msgInvalidBody      = "Invalid request body"
)

var errInvalidBody = errors.New("http: invalid request body")

func invalidBody(err error) error {
	return fmt.Errorf("%w: %w", errInvalidBody, err)
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Issues  map[string]string `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err and writes it. fallback is the message used for
// unexpected failures.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status, payload := mapError(err, fallback)
	writeJSON(w, status, payload)
}

func mapError(err error, fallback string) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: fallback}
	}

	if projects.IsNotFound(err) {
		return http.StatusNotFound, errorResponse{Error: msgProjectNotFound}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) ||
		errors.Is(err, media.ErrFileTooLarge) ||
		errors.Is(err, media.ErrTooManyFiles) {
		return http.StatusRequestEntityTooLarge, errorResponse{
			Error:   msgUploadTooLarge,
			Message: err.Error(),
		}
	}

	if errors.Is(err, errInvalidBody) {
		return http.StatusBadRequest, errorResponse{
			Error:   msgInvalidBody,
			Message: err.Error(),
		}
	}

	if errors.Is(err, media.ErrUnexpectedField) {
		return http.StatusBadRequest, errorResponse{
			Error:   msgUnexpectedUpload,
			Message: err.Error(),
		}
	}

	if errors.Is(err, projects.ErrSlugConflict) {
		return http.StatusConflict, errorResponse{
			Error:   msgSlugConflict,
			Message: err.Error(),
		}
	}

	var issues validation.Errors
	if errors.As(err, &issues) {
		return http.StatusBadRequest, errorResponse{
			Error:   msgInvalidProject,
			Message: err.Error(),
			Issues:  validationIssues(issues),
		}
	}

	if errors.Is(err, projects.ErrIDRequired) {
		return http.StatusBadRequest, errorResponse{Error: msgInvalidID}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   fallback,
		Message: err.Error(),
	}
}

func validationIssues(errs validation.Errors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for key, err := range errs {
		if err != nil {
			out[key] = err.Error()
		}
	}
	return out
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, err
	}
	return parsed, nil
}

func mediaType(r *http.Request) string {
	parsed, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return parsed
}
