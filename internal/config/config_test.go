package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sectionref-mcp/internal/chunker"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_MissingConfigFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, []string{"*.md"}, cfg.Files)
	assert.Equal(t, chunker.DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, filepath.Join(dir, ".sectionref", "index.db"), cfg.CachePath)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName),
		`{"files": ["docs/*.md"], "exclude": ["docs/draft-*"], "maxTokens": 500, "cachePath": "cache/ix.db"}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, []string{"docs/*.md"}, cfg.Files)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.Equal(t, filepath.Join(dir, "cache", "ix.db"), cfg.CachePath)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(t.TempDir(), "custom.json")
	writeFile(t, other, `{"files": ["*.markdown"]}`)
	t.Setenv(EnvConfigPath, other)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.markdown"}, cfg.Files)
}

func TestLoad_EnvOverrideMissingFileIsAnError(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.json"))

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `{not json`)

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestResolveFiles_GlobsAndExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "app.md"), "x")
	writeFile(t, filepath.Join(dir, "docs", "ops.md"), "x")
	writeFile(t, filepath.Join(dir, "docs", "draft-notes.md"), "x")
	writeFile(t, filepath.Join(dir, "README.md"), "x")

	cfg := &Config{
		BaseDir: dir,
		Files:   []string{"docs/*.md"},
		Exclude: []string{"docs/draft-*"},
	}
	cfg.applyDefaults()

	files, err := cfg.ResolveFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "docs", "app.md"),
		filepath.Join(dir, "docs", "ops.md"),
	}, files)
}

func TestResolveFiles_DedupAcrossPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.md"), "x")

	cfg := &Config{BaseDir: dir, Files: []string{"*.md", "app.md"}}
	cfg.applyDefaults()

	files, err := cfg.ResolveFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestResolveFiles_OrderFollowsPatternOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zzz.md"), "x")
	writeFile(t, filepath.Join(dir, "aaa.md"), "x")

	cfg := &Config{BaseDir: dir, Files: []string{"zzz.md", "aaa.md"}}
	cfg.applyDefaults()

	files, err := cfg.ResolveFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "zzz.md"), files[0])
	assert.Equal(t, filepath.Join(dir, "aaa.md"), files[1])
}

func TestLoad_InvalidExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `{"files": ["*.md"], "exclude": ["[unclosed"]}`)

	_, err := Load(dir)
	assert.Error(t, err)
}
