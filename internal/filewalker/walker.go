package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// TemplateSuffix marks a Blade template.
	TemplateSuffix = ".blade.php"
	// DocumentSuffix marks the translation file paired with a template.
	DocumentSuffix = ".php"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"storage":      true,
}

// IsTemplate reports whether path names a Blade template.
func IsTemplate(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, TemplateSuffix) && len(base) > len(TemplateSuffix)
}

// DocumentPathFor returns the translation file paired with a template:
// dir/name.blade.php pairs with dir/name.php.
func DocumentPathFor(templatePath string) (string, bool) {
	if !IsTemplate(templatePath) {
		return "", false
	}
	return strings.TrimSuffix(templatePath, TemplateSuffix) + DocumentSuffix, true
}

// FileEntry is a template together with its existing translation file.
type FileEntry struct {
	Template string
	Document string
}

// Walker discovers template/document pairs.
type Walker struct {
	skip map[string]bool
}

// NewWalker creates a Walker with the default skip list.
func NewWalker() *Walker {
	return &Walker{skip: skippedDirs}
}

// SkipDir reports whether a directory with this base name is ignored.
func (w *Walker) SkipDir(name string) bool {
	return w.skip[name] || (len(name) > 1 && strings.HasPrefix(name, "."))
}

// Walk returns every template under root whose paired translation file
// exists. Templates without one are left alone.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path != root && w.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		doc, ok := DocumentPathFor(path)
		if !ok {
			return nil
		}

		if _, err := os.Stat(doc); err != nil {
			log.Debug().Str("template", path).Msg("No paired translation file")
			return nil
		}

		entries = append(entries, FileEntry{Template: path, Document: doc})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered templates")
	return entries, nil
}
