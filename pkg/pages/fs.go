package pages

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/wikisync/pkg/errors"
	"github.com/agentstation/wikisync/pkg/logging"
)

// FS stores documents as files under a root directory. The hierarchical
// document name maps to a relative path; one prior revision is kept next to
// the current file for fallback-on-corrupt decoding.
type FS struct {
	root string
}

// NewFS creates a filesystem store rooted at dir.
func NewFS(dir string) *FS {
	return &FS{root: dir}
}

const (
	fileExt    = ".yaml"
	backupExt  = ".yaml.prev"
	dirPerm    = 0o755
	filePerm   = 0o644
)

func (f *FS) path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name)+fileExt)
}

// Get implements Store.
func (f *FS) Get(_ context.Context, name string) (string, error) {
	text, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return "", errors.WrapPage("read", name, errors.ErrNotFound)
	}
	if err != nil {
		return "", errors.WrapPage("read", name, err)
	}
	return string(text), nil
}

// Put implements Store. The previous content, if any, is preserved as a
// single backup revision.
func (f *FS) Put(_ context.Context, name, text, summary string) error {
	path := f.path(name)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.WrapPage("write", name, err)
	}

	if previous, err := os.ReadFile(path); err == nil {
		backup := filepath.Join(f.root, filepath.FromSlash(name)+backupExt)
		if err := os.WriteFile(backup, previous, filePerm); err != nil {
			return errors.WrapPage("write", name, err)
		}
	}

	if err := os.WriteFile(path, []byte(text), filePerm); err != nil {
		return errors.WrapPage("write", name, err)
	}

	logging.Info().Str("document", name).Str("summary", summary).Msg("document saved")
	return nil
}

// Revisions implements HistoryStore: the current text followed by the
// single kept backup.
func (f *FS) Revisions(ctx context.Context, name string) ([]string, error) {
	current, err := f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	revisions := []string{current}

	backup, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(name)+backupExt))
	if err == nil {
		revisions = append(revisions, string(backup))
	}
	return revisions, nil
}
