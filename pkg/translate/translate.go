// Package translate rewrites mod-tree relative paths into the path
// convention a title's packages use internally.
//
// Paths handled here always use forward slashes. A title describes its
// conventions as an ordered table of rules; each rule's rewrite is only
// adopted when the rewritten file is not already present under the mod
// root, so a mod author who ships the platform-specific variant directly
// keeps it.
package translate

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

// RemasteredMarker is the path segment that marks region-agnostic
// passthrough content
const RemasteredMarker = "remastered"

// Rule is one conditional rewrite. Trigger sees the path as translated by
// the preceding rules; Rewrite produces the candidate for the active
// region.
type Rule struct {
	Name    string
	Trigger func(path string) bool
	Rewrite func(path, region string) string
}

// Options configures a Translator
type Options struct {
	Rules   []Rule
	Region  string
	ModRoot string
	FS      types.FS
	Logger  zerolog.Logger
}

// Translator applies a title's rule table to mod paths
type Translator struct {
	rules   []Rule
	region  string
	modRoot string
	fs      types.FS
	logger  zerolog.Logger
}

// New creates a Translator
func New(opts Options) *Translator {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("translate")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Translator{
		rules:   opts.Rules,
		region:  opts.Region,
		modRoot: opts.ModRoot,
		fs:      fs,
		logger:  logger,
	}
}

// Translate returns the package-internal path for a mod-relative path.
// It never fails: a path no rule matches comes back normalized.
func (t *Translator) Translate(raw string) string {
	path := Normalize(raw)
	if IsRemastered(path) {
		return path
	}

	for _, rule := range t.rules {
		if !rule.Trigger(path) {
			continue
		}
		candidate := rule.Rewrite(path, t.region)
		if candidate == path {
			continue
		}
		if t.existsInModRoot(candidate) {
			t.logger.Trace().
				Str("rule", rule.Name).
				Str("path", path).
				Str("candidate", candidate).
				Msg("Translated file already present in mod tree, keeping original path")
			continue
		}
		t.logger.Trace().
			Str("rule", rule.Name).
			Str("from", path).
			Str("to", candidate).
			Msg("Path rule applied")
		path = candidate
	}

	return path
}

// existsInModRoot checks the candidate against the mod root, not against
// what has been staged so far.
func (t *Translator) existsInModRoot(candidate string) bool {
	if t.modRoot == "" {
		return false
	}
	return filesystem.Exists(t.fs, filepath.Join(t.modRoot, filepath.FromSlash(candidate)))
}

// Normalize converts separators to forward slashes and strips a single
// leading separator
func Normalize(path string) string {
	path = strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
	return strings.TrimPrefix(path, "/")
}

// IsRemastered reports whether any segment of path is the remastered
// marker
func IsRemastered(path string) bool {
	for _, segment := range strings.Split(Normalize(path), "/") {
		if segment == RemasteredMarker {
			return true
		}
	}
	return false
}
