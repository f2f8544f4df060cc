package http

import (
	"net/http"

	"github.com/goliatone/go-portfolio/internal/showcase"
)

func (api *API) registerShowcaseRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "showcase")
	mux.HandleFunc("GET "+root, api.handleShowcaseList)
	mux.HandleFunc("GET "+root+"/{id}", api.handleShowcaseDetail)
}

// handleShowcaseList returns project cards, optionally filtered by ?q=.
func (api *API) handleShowcaseList(w http.ResponseWriter, r *http.Request) {
	if api.showcase == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	cards, err := api.showcase.Cards(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		api.logFailure(r.Context(), "http.showcase.list_failed", err)
		writeError(w, err, msgFetchProjects)
		return
	}
	if cards == nil {
		cards = []showcase.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (api *API) handleShowcaseDetail(w http.ResponseWriter, r *http.Request) {
	if api.showcase == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgProjectNotFound})
		return
	}
	detail, err := api.showcase.Detail(r.Context(), id)
	if err != nil {
		writeError(w, err, msgFetchProject)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
