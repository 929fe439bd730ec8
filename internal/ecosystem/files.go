package ecosystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pders01/git-release/internal/models"
)

// VersionFiles writes module versions to plain text files.
//
// All temp files are written before any is renamed into place, so a failure
// while preparing the batch leaves every version file untouched.
type VersionFiles struct {
	root  string
	files map[string]string // module id -> path relative to root
}

// NewVersionFiles indexes the version files of modules
func NewVersionFiles(root string, modules []models.Module) *VersionFiles {
	files := make(map[string]string, len(modules))
	for _, m := range modules {
		files[m.ID] = m.VersionFile
	}
	return &VersionFiles{root: root, files: files}
}

type pendingFile struct {
	tmp, dst string
}

// WriteVersions writes every entry of versions or reports failure
func (w *VersionFiles) WriteVersions(ctx context.Context, versions map[string]string) error {
	ids := make([]string, 0, len(versions))
	for id := range versions {
		if _, ok := w.files[id]; !ok {
			return fmt.Errorf("no version file for module %q", id)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var pending []pendingFile
	cleanup := func() {
		for _, p := range pending {
			os.Remove(p.tmp)
		}
	}

	for _, id := range ids {
		dst := filepath.Join(w.root, filepath.FromSlash(w.files[id]))
		tmp, err := writeTemp(dst, versions[id]+"\n")
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to write version of %s: %w", id, err)
		}
		pending = append(pending, pendingFile{tmp: tmp, dst: dst})
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	for i, p := range pending {
		if err := os.Rename(p.tmp, p.dst); err != nil {
			for _, rest := range pending[i:] {
				os.Remove(rest.tmp)
			}
			return fmt.Errorf("failed to replace %s: %w", p.dst, err)
		}
	}
	return nil
}

func writeTemp(dst, content string) (string, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".version-*")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
