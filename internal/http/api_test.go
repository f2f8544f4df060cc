package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/internal/showcase"
)

type testEnv struct {
	handler   http.Handler
	projects  projects.Service
	uploadDir string
}

func setupAPI(t *testing.T, limits media.Limits) testEnv {
	t.Helper()

	projectSvc := projects.NewService(projects.NewMemoryProjectRepository())
	renderer, err := markdown.NewService(markdown.Config{Engine: markdown.EngineLegacy})
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}
	uploadDir := t.TempDir()
	store, err := media.NewLocalStore(uploadDir)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>Portfolio</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	api := NewAPI(
		WithProjectService(projectSvc),
		WithUploadService(media.NewService(store, media.WithLimits(limits))),
		WithMarkdownRenderer(renderer),
		WithShowcaseService(showcase.NewService(projectSvc, showcase.NewBuilder(renderer))),
		WithStaticDir(staticDir),
	)
	handler, err := api.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return testEnv{handler: handler, projects: projectSvc, uploadDir: uploadDir}
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return serve(t, handler, req, wantStatus)
}

func serve(t *testing.T, handler http.Handler, req *http.Request, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d got %d (%s)", wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type filePart struct {
	field, name, body string
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte(f.body)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAPI_Health(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	rec := doJSONRequest(t, env.handler, http.MethodGet, "/api/health", nil, http.StatusOK)
	var body map[string]string
	decodeJSONBody(t, rec, &body)
	if body["status"] != "ok" || body["message"] != "Server is running" {
		t.Fatalf("unexpected health body %v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAPI_ProjectLifecycle(t *testing.T) {
	env := setupAPI(t, media.Limits{})

	createBody := map[string]any{
		"title":             "Sales Dashboard",
		"short_description": "KPIs at a glance",
		"full_description":  "**Built** with Go",
		"technologies":      "Go, SQL",
	}
	createResp := doJSONRequest(t, env.handler, http.MethodPost, "/api/projects", createBody, http.StatusCreated)
	var created projects.Project
	decodeJSONBody(t, createResp, &created)
	if created.ID == uuid.Nil || created.Slug != "sales-dashboard" || created.Status != projects.StatusActive {
		t.Fatalf("unexpected created project %+v", created)
	}

	listResp := doJSONRequest(t, env.handler, http.MethodGet, "/api/projects", nil, http.StatusOK)
	var list []projects.Project
	decodeJSONBody(t, listResp, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 project got %d", len(list))
	}

	path := "/api/projects/" + created.ID.String()
	updateBody := map[string]any{
		"title":             "Sales Dashboard v2",
		"short_description": "KPIs at a glance",
		"status":            "completed",
	}
	updateResp := doJSONRequest(t, env.handler, http.MethodPut, path, updateBody, http.StatusOK)
	var updated projectUpdateResponse
	decodeJSONBody(t, updateResp, &updated)
	if updated.Message != "Project updated successfully" || updated.Project == nil {
		t.Fatalf("unexpected update response %+v", updated)
	}
	if updated.Project.Title != "Sales Dashboard v2" || updated.Project.Slug != "sales-dashboard" {
		t.Fatalf("unexpected updated project %+v", updated.Project)
	}

	descResp := doJSONRequest(t, env.handler, http.MethodGet, path+"/description", nil, http.StatusOK)
	var desc htmlResponse
	decodeJSONBody(t, descResp, &desc)
	if !strings.Contains(desc.HTML, "<strong>Built</strong>") {
		t.Fatalf("expected rendered description got %q", desc.HTML)
	}

	deleteResp := doJSONRequest(t, env.handler, http.MethodDelete, path, nil, http.StatusOK)
	var deleted messageResponse
	decodeJSONBody(t, deleteResp, &deleted)
	if deleted.Message != "Project deleted successfully" {
		t.Fatalf("unexpected delete message %q", deleted.Message)
	}

	notFound := doJSONRequest(t, env.handler, http.MethodGet, path, nil, http.StatusNotFound)
	var errBody errorResponse
	decodeJSONBody(t, notFound, &errBody)
	if errBody.Error != "Project not found" {
		t.Fatalf("unexpected error body %+v", errBody)
	}
	doJSONRequest(t, env.handler, http.MethodDelete, path, nil, http.StatusNotFound)
	doJSONRequest(t, env.handler, http.MethodPut, path, updateBody, http.StatusNotFound)
}

func TestAPI_CreateValidation(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	rec := doJSONRequest(t, env.handler, http.MethodPost, "/api/projects", map[string]any{"title": ""}, http.StatusBadRequest)
	var body errorResponse
	decodeJSONBody(t, rec, &body)
	if body.Issues["title"] == "" || body.Issues["short_description"] == "" {
		t.Fatalf("expected title and short_description issues got %+v", body.Issues)
	}
}

func TestAPI_CreateFromURLEncodedForm(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	form := url.Values{
		"title":             {"Form Project"},
		"short_description": {"Submitted by the admin page"},
		"category":          {"Web Development"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, env.handler, req, http.StatusCreated)

	var created projects.Project
	decodeJSONBody(t, rec, &created)
	if created.Category != "Web Development" {
		t.Fatalf("expected category from form got %q", created.Category)
	}
}

func TestAPI_MultipartUploadsAreStoredAndServed(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	req := multipartRequest(t, http.MethodPost, "/api/projects",
		map[string]string{"title": "Media Project", "short_description": "Has files"},
		filePart{field: media.FieldCoverImage, name: "cover.png", body: "cover-bytes"},
		filePart{field: media.FieldAdditionalImages, name: "one.png", body: "one"},
		filePart{field: media.FieldAdditionalImages, name: "two.png", body: "two"},
	)
	rec := serve(t, env.handler, req, http.StatusCreated)

	var created projects.Project
	decodeJSONBody(t, rec, &created)
	if !strings.HasPrefix(created.CoverImagePath, "uploads/") || !strings.HasSuffix(created.CoverImagePath, "-cover.png") {
		t.Fatalf("unexpected cover path %q", created.CoverImagePath)
	}
	if got := len(created.AdditionalImages()); got != 2 {
		t.Fatalf("expected 2 additional images got %d", got)
	}

	served := serve(t, env.handler, httptest.NewRequest(http.MethodGet, "/"+created.CoverImagePath, nil), http.StatusOK)
	if served.Body.String() != "cover-bytes" {
		t.Fatalf("unexpected served body %q", served.Body.String())
	}

	update := multipartRequest(t, http.MethodPut, "/api/projects/"+created.ID.String(),
		map[string]string{"title": "Media Project", "short_description": "Has files"},
	)
	updateRec := serve(t, env.handler, update, http.StatusOK)
	var updated projectUpdateResponse
	decodeJSONBody(t, updateRec, &updated)
	if updated.Project.CoverImagePath != created.CoverImagePath {
		t.Fatalf("media should be kept without new upload, got %q", updated.Project.CoverImagePath)
	}
}

func TestAPI_UploadLimits(t *testing.T) {
	env := setupAPI(t, media.Limits{MaxFileSize: 8, MaxAdditionalImages: 1})

	oversized := multipartRequest(t, http.MethodPost, "/api/projects",
		map[string]string{"title": "Big", "short_description": "Too big"},
		filePart{field: media.FieldCoverImage, name: "cover.png", body: strings.Repeat("x", 32)},
	)
	serve(t, env.handler, oversized, http.StatusRequestEntityTooLarge)

	tooMany := multipartRequest(t, http.MethodPost, "/api/projects",
		map[string]string{"title": "Many", "short_description": "Too many"},
		filePart{field: media.FieldAdditionalImages, name: "a.png", body: "a"},
		filePart{field: media.FieldAdditionalImages, name: "b.png", body: "b"},
	)
	serve(t, env.handler, tooMany, http.StatusRequestEntityTooLarge)

	unexpected := multipartRequest(t, http.MethodPost, "/api/projects",
		map[string]string{"title": "Odd", "short_description": "Odd field"},
		filePart{field: "avatar", name: "a.png", body: "a"},
	)
	serve(t, env.handler, unexpected, http.StatusBadRequest)

	entries, err := os.ReadDir(env.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no stored files after rejected uploads, got %d", len(entries))
	}
}

func TestAPI_MarkdownPreview(t *testing.T) {
	env := setupAPI(t, media.Limits{})

	rec := doJSONRequest(t, env.handler, http.MethodPost, "/api/markdown/preview", map[string]string{"markdown": "## Features\n- fast"}, http.StatusOK)
	var body htmlResponse
	decodeJSONBody(t, rec, &body)
	if !strings.Contains(body.HTML, "<h2>Features</h2>") || !strings.Contains(body.HTML, "<li>fast</li>") {
		t.Fatalf("unexpected preview html %q", body.HTML)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/markdown/preview", strings.NewReader("*hi*"))
	req.Header.Set("Content-Type", "text/plain")
	plain := serve(t, env.handler, req, http.StatusOK)
	decodeJSONBody(t, plain, &body)
	if !strings.Contains(body.HTML, "<em>hi</em>") {
		t.Fatalf("unexpected plain preview html %q", body.HTML)
	}
}

func TestAPI_Showcase(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	for _, title := range []string{"Inventory Tracker", "Weather Station"} {
		doJSONRequest(t, env.handler, http.MethodPost, "/api/projects", map[string]any{
			"title":             title,
			"short_description": title + " summary",
			"category":          "IoT",
			"impact_metrics":    "Latency: 40ms",
		}, http.StatusCreated)
	}

	rec := doJSONRequest(t, env.handler, http.MethodGet, "/api/showcase", nil, http.StatusOK)
	var cards []showcase.Card
	decodeJSONBody(t, rec, &cards)
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards got %d", len(cards))
	}

	filtered := doJSONRequest(t, env.handler, http.MethodGet, "/api/showcase?q=weather", nil, http.StatusOK)
	decodeJSONBody(t, filtered, &cards)
	if len(cards) != 1 || cards[0].Title != "Weather Station" {
		t.Fatalf("unexpected filtered cards %+v", cards)
	}

	detailResp := doJSONRequest(t, env.handler, http.MethodGet, "/api/showcase/"+cards[0].ID.String(), nil, http.StatusOK)
	var detail showcase.Detail
	decodeJSONBody(t, detailResp, &detail)
	if len(detail.ImpactMetrics) != 1 || detail.ImpactMetrics[0].Label != "Latency" {
		t.Fatalf("unexpected metrics %+v", detail.ImpactMetrics)
	}

	doJSONRequest(t, env.handler, http.MethodGet, "/api/showcase/"+uuid.NewString(), nil, http.StatusNotFound)
}

func TestAPI_StaticSite(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	rec := serve(t, env.handler, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Portfolio") {
		t.Fatalf("expected index page got %q", rec.Body.String())
	}
}

func TestAPI_CORSPreflight(t *testing.T) {
	env := setupAPI(t, media.Limits{})
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", rec.Header())
	}
}
