package http

import (
	"errors"
	"io"
	"net/http"
)

// maxPreviewBytes bounds the Markdown accepted by the preview endpoint.
const maxPreviewBytes int64 = 1 << 20

type previewPayload struct {
	Markdown string `json:"markdown"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

func (api *API) registerMarkdownRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "markdown/preview"), api.handleMarkdownPreview)
}

// handleMarkdownPreview renders a JSON {"markdown": "..."} body, or any other
// body as raw Markdown text.
func (api *API) handleMarkdownPreview(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)

	var source string
	if mediaType(r) == "application/json" {
		var payload previewPayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, invalidBody(err), msgRenderMarkdown)
			return
		}
		source = payload.Markdown
	} else {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, invalidBody(err), msgRenderMarkdown)
			return
		}
		source = string(raw)
	}

	writeJSON(w, http.StatusOK, htmlResponse{HTML: api.markdown.Render(r.Context(), source)})
}

func (api *API) handleProjectDescription(w http.ResponseWriter, r *http.Request) {
	if api.showcase == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgProjectNotFound})
		return
	}
	html, err := api.showcase.Description(r.Context(), id)
	if err != nil {
		writeError(w, err, msgFetchProject)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{HTML: html})
}
