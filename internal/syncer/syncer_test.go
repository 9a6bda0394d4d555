package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blade-trans-sync/internal/cache"
	"blade-trans-sync/internal/parser"
	"blade-trans-sync/internal/translation"
)

const homeTemplate = `<h1>{{ __('welcome.title') }}</h1>
<p>{{ trans('welcome.body', ['name' => $user->name]) }}</p>
`

const homeDocument = `<?php

return [
    'en' => [
        'welcome.title' => 'Hello',
        'old.key' => 'Old',
    ],
];
`

type fakeRecorder struct {
	mu    sync.Mutex
	calls map[string][]string
	err   error
}

func (f *fakeRecorder) RecordUsage(_ context.Context, template, _ string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string][]string)
	}
	f.calls[template] = keys
	return f.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSyncTemplateWritesDocument(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	doc := filepath.Join(dir, "home.php")
	writeFile(t, tmpl, homeTemplate)
	writeFile(t, doc, homeDocument)

	rec := &fakeRecorder{}
	s := New(Options{Policy: translation.DefaultPolicy(), Usage: rec})

	res, err := s.SyncTemplate(context.Background(), tmpl)
	require.NoError(t, err)

	assert.Equal(t, StatusWritten, res.Status)
	assert.Equal(t, doc, res.Document)
	assert.Equal(t, []string{"welcome.body", "welcome.title"}, res.Keys)
	assert.Equal(t, []string{"welcome.body"}, res.Added)
	assert.Equal(t, []string{"old.key"}, res.Removed)
	assert.Equal(t, []string{"en"}, res.Languages)

	want := `<?php

return [
    "en" => [
        "welcome.body" => "welcome.body",
        "welcome.title" => "Hello",
    ]
];
`
	assert.Equal(t, want, readFile(t, doc))
	assert.Equal(t, res.Keys, rec.calls[tmpl])

	info, err := os.Stat(doc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// Nothing else is left in the directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSyncTemplateSecondPassIsCached(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	doc := filepath.Join(dir, "home.php")
	writeFile(t, tmpl, homeTemplate)
	writeFile(t, doc, homeDocument)

	s := New(Options{})
	ctx := context.Background()

	res, err := s.SyncTemplate(ctx, tmpl)
	require.NoError(t, err)
	require.Equal(t, StatusWritten, res.Status)

	res, err = s.SyncTemplate(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusCached, res.Status)

	// A hand edit invalidates the fingerprint; the canonical form is restored.
	synced := readFile(t, doc)
	writeFile(t, doc, synced+"\n// note\n")

	res, err = s.SyncTemplate(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusWritten, res.Status)
	assert.Equal(t, synced, readFile(t, doc))
}

func TestSyncTemplateUnchanged(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	doc := filepath.Join(dir, "home.php")
	writeFile(t, tmpl, homeTemplate)

	canonical, _ := translation.Synchronize(homeTemplate, "", translation.DefaultPolicy())
	writeFile(t, doc, canonical)

	res, err := New(Options{}).SyncTemplate(context.Background(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, res.Status)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
}

func TestSyncTemplateSkips(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := New(Options{})

	t.Run("no paired document", func(t *testing.T) {
		tmpl := filepath.Join(dir, "lonely.blade.php")
		writeFile(t, tmpl, homeTemplate)

		res, err := s.SyncTemplate(ctx, tmpl)
		require.NoError(t, err)
		assert.Equal(t, StatusNoDocument, res.Status)

		_, err = os.Stat(filepath.Join(dir, "lonely.php"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("no keys", func(t *testing.T) {
		tmpl := filepath.Join(dir, "plain.blade.php")
		doc := filepath.Join(dir, "plain.php")
		writeFile(t, tmpl, "<p>{{ $title }}</p>")
		writeFile(t, doc, homeDocument)

		res, err := s.SyncTemplate(ctx, tmpl)
		require.NoError(t, err)
		assert.Equal(t, StatusNoKeys, res.Status)
		assert.Equal(t, homeDocument, readFile(t, doc))
	})

	t.Run("not a template", func(t *testing.T) {
		_, err := s.SyncTemplate(ctx, filepath.Join(dir, "home.php"))
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.SyncTemplate(cctx, filepath.Join(dir, "x.blade.php"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSyncTemplateEmptyDocumentGetsDefaultLanguage(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "a.blade.php")
	doc := filepath.Join(dir, "a.php")
	writeFile(t, tmpl, `@lang('a.b')`)
	writeFile(t, doc, "")

	res, err := New(Options{}).SyncTemplate(context.Background(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusWritten, res.Status)
	assert.Equal(t, []string{translation.DefaultLanguage}, res.Languages)

	parsed, ok := parser.ParseDocument(readFile(t, doc))
	require.True(t, ok)
	table, _ := parsed.Table(translation.DefaultLanguage)
	assert.Equal(t, parser.LanguageTable{"a.b": "a.b"}, table)
}

func TestSyncTemplateDryRun(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	doc := filepath.Join(dir, "home.php")
	writeFile(t, tmpl, homeTemplate)
	writeFile(t, doc, homeDocument)

	rec := &fakeRecorder{}
	res, err := New(Options{DryRun: true, Usage: rec}).SyncTemplate(context.Background(), tmpl)
	require.NoError(t, err)

	assert.Equal(t, StatusDryRun, res.Status)
	assert.Equal(t, []string{"welcome.body"}, res.Added)
	assert.Equal(t, homeDocument, readFile(t, doc))
	assert.Empty(t, rec.calls)
}

func TestSyncTemplateRecorderErrorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	writeFile(t, tmpl, homeTemplate)
	writeFile(t, filepath.Join(dir, "home.php"), homeDocument)

	res, err := New(Options{Usage: &fakeRecorder{err: errors.New("graph down")}}).
		SyncTemplate(context.Background(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, StatusWritten, res.Status)
}

func TestSyncTemplateConcurrentPasses(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "home.blade.php")
	doc := filepath.Join(dir, "home.php")
	writeFile(t, tmpl, homeTemplate)
	writeFile(t, doc, homeDocument)

	s := New(Options{Cache: cache.NewFingerprintCache(nil)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SyncTemplate(context.Background(), tmpl)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	parsed, ok := parser.ParseDocument(readFile(t, doc))
	require.True(t, ok)
	en, _ := parsed.Table("en")
	assert.Equal(t, parser.LanguageTable{"welcome.body": "welcome.body", "welcome.title": "Hello"}, en)
}

func TestSyncAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "home.blade.php"), homeTemplate)
	writeFile(t, filepath.Join(root, "home.php"), homeDocument)
	writeFile(t, filepath.Join(root, "admin", "panel.blade.php"), `@lang('admin.title')`)
	writeFile(t, filepath.Join(root, "admin", "panel.php"), "")
	writeFile(t, filepath.Join(root, "orphan.blade.php"), homeTemplate)

	tasks, err := New(Options{Workers: 2}).SyncAll(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	for _, task := range tasks {
		require.NoError(t, task.Err)
		assert.Equal(t, StatusWritten, task.Result.Status)
	}

	assert.Contains(t, readFile(t, filepath.Join(root, "admin", "panel.php")), `"admin.title" => "admin.title",`)
}

func TestSyncAllBadRoot(t *testing.T) {
	_, err := New(Options{}).SyncAll(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
