package boot

import (
	"os"
	"path/filepath"
)

// Deploy-time constants: the dashboard script lives in a fixed
// subdirectory under a fixed name next to the entry point.
const (
	ScriptDir  = "quantengine"
	ScriptFile = "dashboard.go"
)

// ResolvePaths computes the directory containing the entry file and the
// script subdirectory under it. Pure path computation: the result depends
// only on entryFile, never on the current working directory (relative
// inputs are made absolute once, up front).
func ResolvePaths(entryFile string) (entryDir, scriptDir string) {
	abs := entryFile
	if !filepath.IsAbs(abs) {
		if a, err := filepath.Abs(abs); err == nil {
			abs = a
		}
	}
	entryDir = filepath.Dir(abs)
	scriptDir = filepath.Join(entryDir, ScriptDir)
	return entryDir, scriptDir
}

// SearchPaths is an ordered, de-duplicating list of directories scripts
// are resolved against. It is owned by a single Loader, not process-wide.
type SearchPaths struct {
	dirs []string
	seen map[string]struct{}
}

func NewSearchPaths() *SearchPaths {
	return &SearchPaths{seen: make(map[string]struct{})}
}

// Register appends a directory unless it is already present, so repeated
// registration of the same paths leaves resolution behavior unchanged.
func (sp *SearchPaths) Register(dirs ...string) {
	for _, d := range dirs {
		d = filepath.Clean(d)
		if _, ok := sp.seen[d]; ok {
			continue
		}
		sp.seen[d] = struct{}{}
		sp.dirs = append(sp.dirs, d)
	}
}

// Dirs returns the registered directories in registration order.
func (sp *SearchPaths) Dirs() []string {
	out := make([]string, len(sp.dirs))
	copy(out, sp.dirs)
	return out
}

// Resolve returns the first existing regular file named name under the
// registered directories, in order. The boolean reports whether one was
// found.
func (sp *SearchPaths) Resolve(name string) (string, bool) {
	for _, d := range sp.dirs {
		p := filepath.Join(d, name)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
