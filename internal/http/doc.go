// Package http exposes the portfolio over HTTP.
//
// Routes mount under /api by default:
//   - Health: /health
//   - Projects: /projects, /projects/{id}, /projects/{id}/description
//   - Markdown preview: /markdown/preview
//   - Showcase cards: /showcase, /showcase/{id}
//
// Uploaded media is served from /uploads/ and the static site from /.
// Handler wraps the mux with CORS and request logging; hosts that only need
// the API can call Register on their own mux.
package http
