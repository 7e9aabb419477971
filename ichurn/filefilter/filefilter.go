// Package filefilter selects which changed files get a churn record.
package filefilter

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/src-d/enry/v2"
)

// DefaultExtensions is the suffix allow-list used when nothing else is configured.
var DefaultExtensions = []string{
	".h", ".cc", ".js", ".cpp", ".gyp", ".py", ".c", ".make", ".sh", ".S", ".scons", ".sb", "Makefile",
}

// Filter matches file paths by suffix, glob or detected language. A path is selected when
// any configured rule matches it. An empty filter selects everything.
type Filter struct {
	// Extensions are plain suffixes, so "Makefile" matches "src/Makefile".
	Extensions []string
	// Globs use doublestar syntax, for example "src/**/*.go".
	Globs []string
	// Languages are enry language names, for example "Go" or "Python".
	Languages []string
	// SkipVendored drops paths enry considers vendored, before any other rule.
	SkipVendored bool
}

// Default returns a filter using DefaultExtensions.
func Default() Filter {
	return Filter{Extensions: append([]string(nil), DefaultExtensions...)}
}

// Validate returns an error for invalid glob patterns.
func (f Filter) Validate() error {
	for _, g := range f.Globs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid glob pattern %q", g)
		}
	}
	return nil
}

func (f Filter) empty() bool {
	return len(f.Extensions) == 0 && len(f.Globs) == 0 && len(f.Languages) == 0
}

func (f Filter) Match(filePath string) bool {
	if f.SkipVendored && isVendored(filePath) {
		return false
	}
	if f.empty() {
		return true
	}
	for _, ext := range f.Extensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	for _, g := range f.Globs {
		if ok, _ := doublestar.Match(g, filePath); ok {
			return true
		}
	}
	if len(f.Languages) != 0 {
		lang := enry.GetLanguage(path.Base(filePath), nil)
		if lang == "" {
			return false
		}
		for _, l := range f.Languages {
			if strings.EqualFold(l, lang) {
				return true
			}
		}
	}
	return false
}

func isVendored(filePath string) bool {
	if enry.IsVendor(filePath) {
		// enry matches paths like src/com/foo/android/cache/DiskLruCache.java
		if strings.HasPrefix(filePath, "src/") {
			return false
		}
		return true
	}
	return false
}
