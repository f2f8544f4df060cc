package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// PublicPrefix is the URL path segment stored in front of every file name.
const PublicPrefix = "uploads"

// StoredFile is the outcome of a single LocalStore.Save call.
type StoredFile struct {
	Name     string
	Path     string
	Size     int64
	Checksum string
}

// PruneResult lists the files removed (or that would be removed on a dry
// run) by LocalStore.Prune.
type PruneResult struct {
	Removed []string `json:"removed"`
	Kept    int      `json:"kept"`
	Recent  int      `json:"recent"`
	DryRun  bool     `json:"dry_run"`
}

// PruneOptions controls LocalStore.Prune. Files modified less than MinAge
// ago are left alone so uploads whose project has not been saved yet
// survive; zero disables the check.
type PruneOptions struct {
	DryRun bool
	MinAge time.Duration
}

// StoreOption customises a LocalStore.
type StoreOption func(*LocalStore)

// WithStoreClock overrides the clock used to prefix stored file names.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *LocalStore) {
		if now != nil {
			s.now = now
		}
	}
}

// LocalStore keeps uploads in a single directory on disk. Files are named
// "<unix-millis>-<basename>" and referenced as "uploads/<name>".
type LocalStore struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewLocalStore creates dir when missing and returns a store rooted at it.
func NewLocalStore(dir string, opts ...StoreOption) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("media: upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload directory: %w", err)
	}
	store := &LocalStore{dir: dir, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save copies r into a new file derived from filename.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	file, name, err := s.create(baseName(filename))
	if err != nil {
		return StoredFile{}, err
	}

	hasher := blake3.New()
	size, copyErr := io.Copy(io.MultiWriter(file, hasher), r)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return StoredFile{}, fmt.Errorf("media: write %s: %w", name, err)
	}

	return StoredFile{
		Name:     name,
		Path:     path.Join(PublicPrefix, name),
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// create reserves a unique name. Two uploads with the same basename in the
// same millisecond get consecutive timestamps.
func (s *LocalStore) create(base string) (*os.File, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixMilli()
	for attempt := 0; attempt < 1000; attempt++ {
		name := strconv.FormatInt(stamp+int64(attempt), 10) + "-" + base
		file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("media: create %s: %w", name, err)
		}
	}
	return nil, "", fmt.Errorf("media: no free name for %s", base)
}

// Remove deletes a stored file given its name or "uploads/<name>" path.
func (s *LocalStore) Remove(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimPrefix(filepathToSlash(stored), PublicPrefix+"/")
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("media: refusing to remove %q", stored)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("media: remove %s: %w", name, err)
	}
	return nil
}

// List returns the "uploads/<name>" path of every regular file in the store.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("media: list uploads: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, path.Join(PublicPrefix, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Prune removes every stored file whose path is not in keep and that is
// older than opts.MinAge. Keep entries may carry a leading slash.
func (s *LocalStore) Prune(ctx context.Context, keep []string, opts PruneOptions) (PruneResult, error) {
	result := PruneResult{DryRun: opts.DryRun}
	cutoff := s.now().Add(-opts.MinAge)

	keepSet := make(map[string]struct{}, len(keep))
	for _, entry := range keep {
		keepSet[strings.TrimPrefix(filepathToSlash(entry), "/")] = struct{}{}
	}

	stored, err := s.List(ctx)
	if err != nil {
		return result, err
	}
	for _, candidate := range stored {
		if _, ok := keepSet[candidate]; ok {
			result.Kept++
			continue
		}
		if opts.MinAge > 0 {
			recent, err := s.modifiedAfter(candidate, cutoff)
			if err != nil {
				return result, err
			}
			if recent {
				result.Recent++
				continue
			}
		}
		if !opts.DryRun {
			if err := s.Remove(ctx, candidate); err != nil {
				return result, err
			}
		}
		result.Removed = append(result.Removed, candidate)
	}
	return result, nil
}

func (s *LocalStore) modifiedAfter(stored string, cutoff time.Time) (bool, error) {
	info, err := os.Stat(filepath.Join(s.dir, strings.TrimPrefix(stored, PublicPrefix+"/")))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("media: stat %s: %w", stored, err)
	}
	return info.ModTime().After(cutoff), nil
}

// baseName reduces filename to a single path segment that survives the
// comma separated additional_images_paths column: commas become
// underscores and surrounding whitespace is dropped.
func baseName(filename string) string {
	name := path.Base(filepathToSlash(strings.TrimSpace(filename)))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case r == ',':
			return '_'
		default:
			return r
		}
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "upload"
	}
	return name
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
