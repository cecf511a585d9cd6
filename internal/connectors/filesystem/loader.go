// Package filesystem loads documents from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// mimeTypes maps accepted extensions to the MIME type handed to normalisers.
var mimeTypes = map[string]string{
	".txt": "text/plain",
	".md":  "text/markdown",
	".pdf": "application/pdf",
}

// MIMEType returns the MIME type for path, or "" when the extension is not accepted.
func MIMEType(path string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(path))]
}

// Loader reads every accepted file under a root directory.
type Loader struct {
	root     string
	registry driven.NormaliserRegistry
}

// New creates a loader for root that extracts text through registry.
func New(root string, registry driven.NormaliserRegistry) *Loader {
	return &Loader{root: root, registry: registry}
}

// Root returns the scanned directory.
func (l *Loader) Root() string {
	return l.root
}

// Load walks the tree in lexical order and returns one Document per
// readable file with non-blank text. Files that fail to normalise are
// skipped with a warning; hidden files and directories are ignored.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("documents directory %s: %w", l.root, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("documents directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidConfig, l.root)
	}

	var docs []domain.Document
	seen := make(map[string]string)

	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != l.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		mime := MIMEType(path)
		if mime == "" {
			return nil
		}

		doc, ok := l.loadFile(ctx, path, mime)
		if !ok {
			return nil
		}

		if prev, dup := seen[doc.DocID]; dup {
			name := uniqueName(l.relative(path), seen)
			logger.Warn("%s has the same name as %s, using %q as its document name", path, prev, name)
			doc.DocID = name
		}
		seen[doc.DocID] = path

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded %d documents from %s", len(docs), l.root)
	return docs, nil
}

func (l *Loader) loadFile(ctx context.Context, path, mime string) (domain.Document, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return domain.Document{}, false
	}

	raw := &domain.RawDocument{
		URI:      path,
		MIMEType: mime,
		Content:  content,
	}

	result, err := l.registry.Normalise(ctx, raw)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return domain.Document{}, false
	}

	doc := result.Document
	if strings.TrimSpace(doc.Text) == "" {
		logger.Debug("Skipping %s: no text", path)
		return domain.Document{}, false
	}
	doc.Source = path
	if doc.DocID == "" {
		doc.DocID = domain.DocIDFromPath(path)
	}
	return doc, true
}

// relative returns path relative to the root with forward slashes.
func (l *Loader) relative(path string) string {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// uniqueName returns name, or name~N with the smallest N >= 2 not in seen.
func uniqueName(name string, seen map[string]string) string {
	if _, taken := seen[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s~%d", name, n)
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
