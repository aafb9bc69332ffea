package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tessel/internal/emit"
	"tessel/internal/groupfile"
)

// ListGroupFiles expands paths into a sorted, duplicate-free list of group
// files. Directories are walked recursively for *.group.toml; plain files are
// taken as given.
func ListGroupFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, groupfile.Ext) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// OutputPath is where the artifact for the group file src is written.
func OutputPath(outDir, src string, format emit.Format) string {
	base := filepath.Base(src)
	if stem, ok := strings.CutSuffix(base, groupfile.Ext); ok {
		base = stem
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(outDir, base+format.Ext())
}
