package node

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func readFileByPath(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return readFileFromDir(dir, name)
}

func readFileFromDir(dir, name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	return fs.ReadFile(os.DirFS(dir), name)
}

// WriteFileAtomic writes b to path as a crash-safe commit point:
// write temp -> fsync temp -> rename -> fsync dir.
func WriteFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid file name: %q", name)
	}
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) // #nosec G304 -- tmp path is derived from an operator-supplied output path.
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	d, err := os.Open(dir) // #nosec G304 -- dir is the parent of an operator-supplied output path.
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return fmt.Errorf("fsync dir: %w", err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("fsync dir close: %w", err)
	}
	return nil
}
