package projectscmd

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-portfolio/internal/commands/fixtures"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type stubProjects struct {
	deleted    []uuid.UUID
	deleteErr  error
	references []string
}

func (s *stubProjects) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *stubProjects) ReferencedPaths(context.Context) ([]string, error) {
	return s.references, nil
}

type stubPruner struct {
	keep   []string
	dryRun bool
	minAge time.Duration
	result media.PruneResult
}

func (s *stubPruner) Prune(_ context.Context, keep []string, opts media.PruneOptions) (media.PruneResult, error) {
	s.keep = keep
	s.dryRun = opts.DryRun
	s.minAge = opts.MinAge
	s.result.DryRun = opts.DryRun
	return s.result, nil
}

type stubImporter struct {
	fsys   fs.FS
	dir    string
	opts   markdown.ImportOptions
	result *markdown.ImportResult
}

func (s *stubImporter) ImportDirectory(_ context.Context, fsys fs.FS, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error) {
	s.fsys, s.dir, s.opts = fsys, dir, opts
	return s.result, nil
}

func TestDeleteProjectHandler(t *testing.T) {
	svc := &stubProjects{}
	handler := NewDeleteProjectHandler(svc, nil)
	id := uuid.New()

	if err := handler.Execute(context.Background(), DeleteProjectCommand{ID: id}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != id {
		t.Fatalf("expected delete of %s, got %v", id, svc.deleted)
	}

	err := handler.Execute(context.Background(), DeleteProjectCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
}

func TestDeleteProjectHandlerKeepsNotFound(t *testing.T) {
	svc := &stubProjects{deleteErr: &projects.NotFoundError{Resource: "project", Key: "x"}}
	handler := NewDeleteProjectHandler(svc, nil)

	err := handler.Execute(context.Background(), DeleteProjectCommand{ID: uuid.New()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !projects.IsNotFound(err) {
		t.Fatalf("expected not found to stay detectable, got %v", err)
	}
}

func TestCleanupUploadsHandlerReportsResult(t *testing.T) {
	svc := &stubProjects{references: []string{"uploads/keep.png"}}
	pruner := &stubPruner{result: media.PruneResult{Removed: []string{"uploads/old.png"}, Kept: 1}}
	handler := NewCleanupUploadsHandler(svc, pruner, nil)

	var result media.PruneResult
	if err := handler.Execute(context.Background(), CleanupUploadsCommand{DryRun: true, Result: &result}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !pruner.dryRun || len(pruner.keep) != 1 || pruner.keep[0] != "uploads/keep.png" {
		t.Fatalf("unexpected prune call keep=%v dry=%v", pruner.keep, pruner.dryRun)
	}
	if len(result.Removed) != 1 || !result.DryRun {
		t.Fatalf("expected result to be reported, got %+v", result)
	}
}

func TestCleanupUploadsHandlerMinAge(t *testing.T) {
	svc := &stubProjects{}
	pruner := &stubPruner{}

	handler := NewCleanupUploadsHandler(svc, pruner, nil)
	if err := handler.Execute(context.Background(), CleanupUploadsCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if pruner.minAge != DefaultCleanupMinAge {
		t.Fatalf("expected default grace window %s, got %s", DefaultCleanupMinAge, pruner.minAge)
	}

	configured := NewCleanupUploadsHandler(svc, pruner, nil, CleanupWithMinAge(10*time.Minute))
	if err := configured.Execute(context.Background(), CleanupUploadsCommand{}); err != nil {
		t.Fatalf("execute configured: %v", err)
	}
	if pruner.minAge != 10*time.Minute {
		t.Fatalf("expected configured grace window, got %s", pruner.minAge)
	}

	zero := time.Duration(0)
	if err := configured.Execute(context.Background(), CleanupUploadsCommand{MinAge: &zero}); err != nil {
		t.Fatalf("execute override: %v", err)
	}
	if pruner.minAge != 0 {
		t.Fatalf("expected per-command override, got %s", pruner.minAge)
	}

	negative := -time.Second
	if err := configured.Execute(context.Background(), CleanupUploadsCommand{MinAge: &negative}); err == nil {
		t.Fatal("expected negative grace window to be rejected")
	}
}

func TestCleanupUploadsCron(t *testing.T) {
	svc := &stubProjects{}
	pruner := &stubPruner{}
	handler := NewCleanupUploadsHandler(svc, pruner, nil, CleanupWithCronExpression("@every 1h"))

	recorder := fixtures.NewCronRecorder()
	if err := RegisterCleanupCron(recorder.Registrar(), handler); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if len(recorder.Registrations) != 1 || recorder.Registrations[0].Config.Expression != "@every 1h" {
		t.Fatalf("unexpected registrations %+v", recorder.Registrations)
	}
	if err := recorder.RunAll(); err != nil {
		t.Fatalf("run cron: %v", err)
	}
	if pruner.dryRun {
		t.Fatal("scheduled cleanup must not be a dry run")
	}

	if err := RegisterCleanupCron(nil, handler); err != nil {
		t.Fatalf("nil registrar should be ignored: %v", err)
	}
}

func TestImportProjectsHandler(t *testing.T) {
	importer := &stubImporter{result: &markdown.ImportResult{Created: []uuid.UUID{uuid.New()}}}
	mapFS := fstest.MapFS{"a.md": {Data: []byte("---\ntitle: A\n---\n")}}
	var opened string
	handler := NewImportProjectsHandler(importer, nil, WithFileSystem(func(dir string) fs.FS {
		opened = dir
		return mapFS
	}))

	var result markdown.ImportResult
	err := handler.Execute(context.Background(), ImportProjectsCommand{
		Directory: " content/projects ",
		Recursive: true,
		DryRun:    true,
		Result:    &result,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if opened != "content/projects" || importer.dir != "." {
		t.Fatalf("unexpected directory handling opened=%q dir=%q", opened, importer.dir)
	}
	if !importer.opts.DryRun || !importer.opts.Recursive {
		t.Fatalf("expected options forwarded, got %+v", importer.opts)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected result copied, got %+v", result)
	}

	if err := handler.Execute(context.Background(), ImportProjectsCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportProjectsHandlerSurfacesDocumentErrors(t *testing.T) {
	importer := &stubImporter{result: &markdown.ImportResult{Errors: []error{errors.New("bad.md: title missing")}}}
	handler := NewImportProjectsHandler(importer, nil, WithFileSystem(func(string) fs.FS { return fstest.MapFS{} }))

	if err := handler.Execute(context.Background(), ImportProjectsCommand{Directory: "x"}); err == nil {
		t.Fatal("expected document errors to fail the command")
	}
}

func TestRegisterProjectCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	set, err := RegisterProjectCommands(reg, Dependencies{
		Projects: &stubProjects{},
		Uploads:  &stubPruner{},
		Importer: &stubImporter{},
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Handlers) != 3 {
		t.Fatalf("expected three handlers, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.Delete || reg.Handlers[2] != set.Cleanup {
		t.Fatalf("unexpected registration order %#v", reg.Handlers)
	}

	partial, err := RegisterProjectCommands(nil, Dependencies{Projects: &stubProjects{}}, nil)
	if err != nil {
		t.Fatalf("register partial: %v", err)
	}
	if partial.Import != nil || partial.Cleanup != nil || len(partial.Handlers()) != 1 {
		t.Fatalf("expected only delete handler, got %#v", partial)
	}

	if _, err := RegisterProjectCommands(nil, Dependencies{}, nil); err == nil {
		t.Fatal("expected error without project service")
	}

	reg.Err = errors.New("registry closed")
	if _, err := RegisterProjectCommands(reg, Dependencies{Projects: &stubProjects{}}, nil); err == nil {
		t.Fatal("expected registry error")
	}
}
