package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// DirStore keeps rendered artifacts under a single root directory. An
// artifact reference is a path relative to the root.
type DirStore struct {
	Root string
}

// Discard removes one artifact's directory tree. References escaping the
// root are rejected.
func (s *DirStore) Discard(ref string) error {
	clean := filepath.Clean(ref)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid artifact ref %q", ref)
	}
	return os.RemoveAll(filepath.Join(s.Root, clean))
}

// Free reports free and total bytes on the filesystem holding the root.
func (s *DirStore) Free() (free, total uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(s.Root, &st); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", s.Root, err)
	}
	bsize := uint64(st.Bsize)
	return st.Bavail * bsize, st.Blocks * bsize, nil
}
