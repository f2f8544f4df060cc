package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoadOptions controls directory discovery.
type LoadOptions struct {
	// Pattern is matched against file base names; defaults to "*.md".
	Pattern   string
	Recursive bool
}

// LoadDirectory parses every matching Markdown file under dir in fsys. Files
// are returned sorted by path. Parse failures are collected per file so one
// bad document does not hide the others.
func LoadDirectory(ctx context.Context, fsys fs.FS, dir string, opts LoadOptions) ([]*ProjectDocument, []error, error) {
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, nil, fmt.Errorf("markdown: invalid pattern %q: %w", pattern, err)
	}
	root := path.Clean(filePathToSlash(strings.TrimSpace(dir)))
	if root == "" {
		root = "."
	}

	var (
		docs   []*ProjectDocument
		failed  []error
	)
	walkErr := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != root && !opts.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := path.Match(pattern, d.Name()); !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("markdown: read %s: %w", p, err)
		}
		doc, err := ParseProjectDocument(p, data)
		if err != nil {
			failed = append(failed, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, failed, walkErr
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, failed, nil
}
