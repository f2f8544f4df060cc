package projects_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/projects"
)

func newTestService(t *testing.T, opts ...projects.ServiceOption) (projects.Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	base := []projects.ServiceOption{projects.WithClock(clock.Now)}
	return projects.NewService(projects.NewMemoryProjectRepository(), append(base, opts...)...), clock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestServiceCreateAppliesDefaults(t *testing.T) {
	fixedID := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	svc, clock := newTestService(t, projects.WithIDGenerator(func() uuid.UUID { return fixedID }))

	created, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Fields: projects.Fields{
			Title:            "  Sales Dashboard ",
			ShortDescription: "Interactive KPIs",
			Technologies:     "Go, Postgres",
			GithubURL:        "https://github.com/example/sales",
		},
		Media: projects.MediaUpload{CoverImage: "uploads/1-cover.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID != fixedID {
		t.Fatalf("expected id %s, got %s", fixedID, created.ID)
	}
	if created.Title != "Sales Dashboard" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Slug != "sales-dashboard" {
		t.Fatalf("expected slug sales-dashboard, got %q", created.Slug)
	}
	if created.Status != projects.StatusActive {
		t.Fatalf("expected default status active, got %q", created.Status)
	}
	if !created.CreatedDate.Equal(clock.now) || !created.UpdatedDate.Equal(clock.now) {
		t.Fatalf("expected timestamps from clock, got %v / %v", created.CreatedDate, created.UpdatedDate)
	}
	if created.CoverImagePath != "uploads/1-cover.png" {
		t.Fatalf("expected cover image path, got %q", created.CoverImagePath)
	}
	if got := created.TechnologyList(); len(got) != 2 || got[1] != "Postgres" {
		t.Fatalf("unexpected technologies %#v", got)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Fields: projects.Fields{
			Title:       "   ",
			LiveDemoURL: "ftp://example.com",
		},
	})
	if !projects.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	assertCode(t, errs, "title", projects.CodeTitleRequired)
	assertCode(t, errs, "short_description", projects.CodeShortDescriptionRequired)
	assertCode(t, errs, "live_demo_url", projects.CodeInvalidURL)
}

func TestServiceCreateShortDescriptionOptional(t *testing.T) {
	cfg := projects.DefaultConfig()
	cfg.RequireShortDescription = false
	svc, _ := newTestService(t, projects.WithConfig(cfg))

	if _, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Minimal"},
	}); err != nil {
		t.Fatalf("expected create without short description, got %v", err)
	}
}

func TestServiceCreateTruncatesShortDescription(t *testing.T) {
	svc, _ := newTestService(t)

	long := strings.Repeat("a", 1001)
	created, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Long", ShortDescription: long},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.ShortDescription) != 1000 {
		t.Fatalf("expected 1000 characters, got %d", len(created.ShortDescription))
	}
	if !strings.HasSuffix(created.ShortDescription, "...") || !strings.HasPrefix(created.ShortDescription, strings.Repeat("a", 997)) {
		t.Fatalf("unexpected truncation %q", created.ShortDescription[990:])
	}

	exact := strings.Repeat("b", 1000)
	kept, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Exact", ShortDescription: exact},
	})
	if err != nil {
		t.Fatalf("create exact: %v", err)
	}
	if kept.ShortDescription != exact {
		t.Fatalf("expected description at limit to be kept")
	}
}

func TestServiceCreateDerivesUniqueSlugs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := projects.CreateProjectRequest{Fields: projects.Fields{Title: "Energy Forecast", ShortDescription: "x"}}
	first, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Slug != "energy-forecast" || second.Slug != "energy-forecast-2" {
		t.Fatalf("unexpected slugs %q and %q", first.Slug, second.Slug)
	}

	req.Slug = "energy-forecast"
	if _, err := svc.Create(ctx, req); !errors.Is(err, projects.ErrSlugConflict) {
		t.Fatalf("expected slug conflict for explicit slug, got %v", err)
	}

	found, err := svc.GetBySlug(ctx, "energy-forecast-2")
	if err != nil || found.ID != second.ID {
		t.Fatalf("expected lookup by slug, got %v %v", found, err)
	}
}

func TestServiceUpdateKeepsMediaWhenNoUpload(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Churn Model", ShortDescription: "Predicts churn", Status: "completed"},
		Media: projects.MediaUpload{
			CoverImage:       "uploads/1-cover.png",
			AdditionalImages: []string{"uploads/1-a.png", "uploads/1-b.png"},
			DemoVideo:        "uploads/1-demo.mp4",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock.Advance(time.Hour)
	updated, err := svc.Update(ctx, projects.UpdateProjectRequest{
		ID:     created.ID,
		Fields: projects.Fields{Title: "Churn Model v2"},
		Media:  projects.MediaUpload{DemoVideo: "uploads/2-demo.mp4"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "Churn Model v2" {
		t.Fatalf("expected new title, got %q", updated.Title)
	}
	if updated.ShortDescription != "" {
		t.Fatalf("expected short description to be replaced, got %q", updated.ShortDescription)
	}
	if updated.Status != "completed" {
		t.Fatalf("expected empty status to keep current, got %q", updated.Status)
	}
	if updated.CoverImagePath != "uploads/1-cover.png" {
		t.Fatalf("expected cover image kept, got %q", updated.CoverImagePath)
	}
	if got := updated.AdditionalImages(); len(got) != 2 {
		t.Fatalf("expected additional images kept, got %#v", got)
	}
	if updated.DemoVideoPath != "uploads/2-demo.mp4" {
		t.Fatalf("expected demo video replaced, got %q", updated.DemoVideoPath)
	}
	if !updated.UpdatedDate.Equal(clock.now) || updated.CreatedDate.Equal(clock.now) {
		t.Fatalf("expected only updated_date to move, got created=%v updated=%v", updated.CreatedDate, updated.UpdatedDate)
	}
	if updated.Slug != created.Slug {
		t.Fatalf("expected slug to stay stable, got %q", updated.Slug)
	}
}

func TestServiceUpdateAndDeleteMissing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	missing := uuid.New()

	if _, err := svc.Update(ctx, projects.UpdateProjectRequest{ID: missing, Fields: projects.Fields{Title: "x"}}); !projects.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := svc.Delete(ctx, missing); !projects.IsNotFound(err) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if _, err := svc.Get(ctx, uuid.Nil); !errors.Is(err, projects.ErrIDRequired) {
		t.Fatalf("expected id required, got %v", err)
	}
}

func TestServiceListNewestFirstAndReferencedPaths(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	older, err := svc.Create(ctx, projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Older", ShortDescription: "x"},
		Media:  projects.MediaUpload{CoverImage: "uploads/shared.png", AdditionalImages: []string{"uploads/a.png"}},
	})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	clock.Advance(time.Minute)
	newer, err := svc.Create(ctx, projects.CreateProjectRequest{
		Fields: projects.Fields{Title: "Newer", ShortDescription: "y"},
		Media:  projects.MediaUpload{CoverImage: "uploads/shared.png", DemoVideo: "uploads/v.mp4"},
	})
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest first, got %#v", list)
	}

	paths, err := svc.ReferencedPaths(ctx)
	if err != nil {
		t.Fatalf("referenced paths: %v", err)
	}
	want := []string{"uploads/a.png", "uploads/shared.png", "uploads/v.mp4"}
	if strings.Join(paths, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, paths)
	}

	if err := svc.Delete(ctx, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, older.ID); !projects.IsNotFound(err) {
		t.Fatalf("expected deleted project to be gone, got %v", err)
	}
}

func assertCode(t *testing.T, errs validation.Errors, field, code string) {
	t.Helper()
	fieldErr, ok := errs[field]
	if !ok {
		t.Fatalf("expected validation error for %s, got %v", field, errs)
	}
	var verr validation.Error
	if !errors.As(fieldErr, &verr) {
		t.Fatalf("expected validation.Error for %s, got %T", field, fieldErr)
	}
	if verr.Code() != code {
		t.Fatalf("expected code %s for %s, got %s", code, field, verr.Code())
	}
}
