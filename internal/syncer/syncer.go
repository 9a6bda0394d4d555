package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"blade-trans-sync/internal/cache"
	"blade-trans-sync/internal/filewalker"
	"blade-trans-sync/internal/parser"
	"blade-trans-sync/internal/textutil"
	"blade-trans-sync/internal/translation"
	"blade-trans-sync/internal/worker"

	"github.com/rs/zerolog/log"
)

// Status describes what a pass did with a template.
type Status string

const (
	StatusWritten    Status = "written"
	StatusDryRun     Status = "dry-run"
	StatusUnchanged  Status = "unchanged"
	StatusCached     Status = "cached"
	StatusNoKeys     Status = "no-keys"
	StatusNoDocument Status = "no-document"
)

// Result reports one synchronization pass.
type Result struct {
	Template  string
	Document  string
	Status    Status
	Keys      []string
	Added     []string
	Removed   []string
	Languages []string
}

// UsageRecorder receives the keys found in a template after each pass.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, templatePath, documentPath string, keys []string) error
}

// Options configures a Syncer. Zero values are usable: the default policy,
// a memory-only cache, no usage recording and a single worker.
type Options struct {
	Policy  translation.Policy
	DryRun  bool
	Workers int
	Cache   *cache.FingerprintCache
	Usage   UsageRecorder
}

// Syncer keeps translation files in step with their Blade templates.
type Syncer struct {
	policy  translation.Policy
	dryRun  bool
	workers int
	cache   *cache.FingerprintCache
	usage   UsageRecorder
	walker  *filewalker.Walker
	locks   *pathLocks
}

// New creates a Syncer.
func New(opts Options) *Syncer {
	if opts.Policy.DefaultLanguage == "" && opts.Policy.IdentityLanguages == nil {
		opts.Policy = translation.DefaultPolicy()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewFingerprintCache(nil)
	}
	return &Syncer{
		policy:  opts.Policy,
		dryRun:  opts.DryRun,
		workers: opts.Workers,
		cache:   opts.Cache,
		usage:   opts.Usage,
		walker:  filewalker.NewWalker(),
		locks:   newPathLocks(),
	}
}

// SyncTemplate runs one pass for a template: extract its keys, merge them
// into the paired translation file and write the file back if it changed.
// Templates without a paired file are skipped. Passes on the same file are
// serialized.
func (s *Syncer) SyncTemplate(ctx context.Context, templatePath string) (Result, error) {
	docPath, ok := filewalker.DocumentPathFor(templatePath)
	if !ok {
		return Result{}, fmt.Errorf("not a blade template: %s", templatePath)
	}

	res := Result{Template: templatePath, Document: docPath}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	unlock := s.locks.lock(docPath)
	defer unlock()

	info, err := os.Stat(docPath)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = StatusNoDocument
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("stat translation file: %w", err)
	}

	markup, err := os.ReadFile(templatePath)
	if err != nil {
		return res, fmt.Errorf("read template: %w", err)
	}

	res.Keys = translation.ExtractKeys(string(markup))
	if len(res.Keys) == 0 {
		res.Status = StatusNoKeys
		return res, nil
	}

	existing, err := os.ReadFile(docPath)
	if err != nil {
		return res, fmt.Errorf("read translation file: %w", err)
	}
	existingText := string(existing)

	if s.cache.Matches(ctx, templatePath, textutil.Fingerprint(res.Keys, existingText)) {
		res.Status = StatusCached
		return res, nil
	}

	before, ok := parser.ParseDocument(existingText)
	if !ok {
		log.Debug().Str("document", docPath).Msg("No language blocks found, starting from an empty table")
		before = parser.NewDocument()
	}

	merged := translation.Merge(before, res.Keys, s.policy)
	output := translation.Serialize(merged)

	res.Added, res.Removed = translation.Diff(before, res.Keys)
	res.Languages = merged.Languages()

	switch {
	case output == existingText:
		res.Status = StatusUnchanged
	case s.dryRun:
		res.Status = StatusDryRun
		return res, nil
	default:
		if err := writeFileAtomic(docPath, []byte(output), info.Mode().Perm()); err != nil {
			return res, err
		}
		res.Status = StatusWritten
	}

	s.recordUsage(ctx, res)

	if err := s.cache.Set(ctx, templatePath, textutil.Fingerprint(res.Keys, output)); err != nil {
		log.Warn().Err(err).Str("template", templatePath).Msg("Failed to store fingerprint")
	}

	return res, nil
}

// SyncAll synchronizes every template under root that has a paired
// translation file. Per-template failures are reported in the returned
// tasks, not as an error.
func (s *Syncer) SyncAll(ctx context.Context, root string) ([]worker.Task[filewalker.FileEntry, Result], error) {
	entries, err := s.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk templates: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, Result](s.workers,
		func(ctx context.Context, entry filewalker.FileEntry) (Result, error) {
			return s.SyncTemplate(ctx, entry.Template)
		},
	)

	return pool.Execute(ctx, entries), nil
}

func (s *Syncer) recordUsage(ctx context.Context, res Result) {
	if s.usage == nil {
		return
	}
	if err := s.usage.RecordUsage(ctx, res.Template, res.Document, res.Keys); err != nil {
		log.Warn().Err(err).Str("template", res.Template).Msg("Failed to record key usage")
	}
}

// writeFileAtomic replaces path through a temporary file in the same
// directory so readers never observe a partial document.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace translation file: %w", err)
	}
	return nil
}
