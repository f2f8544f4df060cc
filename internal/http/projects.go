package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goliatone/go-portfolio/internal/projects"
)

// formOverhead is added to the upload budget for the text fields.
const formOverhead int64 = 1 << 20

type projectPayload struct {
	projects.Fields
	Slug string `json:"slug,omitempty"`
}

type projectUpdateResponse struct {
	Message string            `json:"message"`
	Project *projects.Project `json:"project"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (api *API) registerProjectRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "projects")
	mux.HandleFunc("GET "+root, api.handleProjectList)
	mux.HandleFunc("POST "+root, api.handleProjectCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleProjectGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleProjectUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleProjectDelete)
	mux.HandleFunc("GET "+root+"/{id}/description", api.handleProjectDescription)
}

func (api *API) handleProjectList(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	list, err := api.projects.List(r.Context())
	if err != nil {
		api.logFailure(r.Context(), "http.projects.list_failed", err)
		writeError(w, err, msgFetchProjects)
		return
	}
	if list == nil {
		list = []*projects.Project{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgProjectNotFound})
		return
	}
	record, err := api.projects.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, msgFetchProject)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	payload, upload, cleanup, err := api.readProjectRequest(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, err, msgCreateProject)
		return
	}

	record, err := api.projects.Create(r.Context(), projects.CreateProjectRequest{
		Fields: payload.Fields,
		Slug:   payload.Slug,
		Media:  upload,
	})
	if err != nil {
		api.logFailure(r.Context(), "http.projects.create_failed", err)
		writeError(w, err, msgCreateProject)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgProjectNotFound})
		return
	}
	payload, upload, cleanup, err := api.readProjectRequest(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, err, msgUpdateProject)
		return
	}

	record, err := api.projects.Update(r.Context(), projects.UpdateProjectRequest{
		ID:     id,
		Fields: payload.Fields,
		Media:  upload,
	})
	if err != nil {
		api.logFailure(r.Context(), "http.projects.update_failed", err)
		writeError(w, err, msgUpdateProject)
		return
	}
	writeJSON(w, http.StatusOK, projectUpdateResponse{
		Message: "Project updated successfully",
		Project: record,
	})
}

func (api *API) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if api.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgProjectNotFound})
		return
	}
	if err := api.projects.Delete(r.Context(), id); err != nil {
		writeError(w, err, msgDeleteProject)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Project deleted successfully"})
}

// readProjectRequest decodes a multipart, urlencoded or JSON project body.
// Multipart files are stored through the upload service. The returned
// cleanup releases temporary multipart files and is always non-nil.
func (api *API) readProjectRequest(w http.ResponseWriter, r *http.Request) (projectPayload, projects.MediaUpload, func(), error) {
	cleanup := func() {}
	var payload projectPayload

	if api.uploads != nil {
		limits := api.uploads.Limits()
		budget := limits.MaxFileSize*int64(limits.MaxAdditionalImages+2) + formOverhead
		r.Body = http.MaxBytesReader(w, r.Body, budget)
	}

	switch mediaType(r) {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(api.maxMemory); err != nil {
			return payload, projects.MediaUpload{}, cleanup, invalidBody(err)
		}
		form := r.MultipartForm
		cleanup = func() { _ = form.RemoveAll() }
		payload = payloadFromValues(url.Values(form.Value))
		if api.uploads == nil {
			return payload, projects.MediaUpload{}, cleanup, nil
		}
		upload, attachments, err := api.uploads.Store(r.Context(), form)
		if err != nil {
			return payload, projects.MediaUpload{}, cleanup, err
		}
		if len(attachments) > 0 {
			api.logger.WithContext(r.Context()).Debug("http.projects.media_attached", "files", len(attachments))
		}
		return payload, upload, cleanup, nil
	case "application/json":
		if err := decodeJSON(r, &payload); err != nil {
			return payload, projects.MediaUpload{}, cleanup, invalidBody(err)
		}
		return payload, projects.MediaUpload{}, cleanup, nil
	default:
		if err := r.ParseForm(); err != nil {
			return payload, projects.MediaUpload{}, cleanup, invalidBody(err)
		}
		return payloadFromValues(r.PostForm), projects.MediaUpload{}, cleanup, nil
	}
}

func payloadFromValues(values url.Values) projectPayload {
	return projectPayload{
		Fields: projects.Fields{
			Title:            values.Get("title"),
			ShortDescription: values.Get("short_description"),
			FullDescription:  values.Get("full_description"),
			Technologies:     values.Get("technologies"),
			GithubURL:        values.Get("github_url"),
			LiveDemoURL:      values.Get("live_demo_url"),
			Category:         values.Get("category"),
			Status:           values.Get("status"),
			ImpactMetrics:    values.Get("impact_metrics"),
		},
		Slug: values.Get("slug"),
	}
}

func (api *API) logFailure(ctx context.Context, msg string, err error) {
	if projects.IsNotFound(err) || projects.IsValidation(err) {
		return
	}
	api.logger.WithContext(ctx).Error(msg, "error", err)
}
