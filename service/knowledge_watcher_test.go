package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reloadedYAML = `
fallbacks: ["x"]
categories:
  - category: greeting
    patterns: ['hello']
    responses: ["Hi"]
  - category: weather
    patterns: ['weather']
    responses: ["Sunny"]
`

func writeKnowledge(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestKnowledgeStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	writeKnowledge(t, path, testKnowledgeYAML)

	store, err := NewFileKnowledgeStore(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Len(t, store.Current().Categories(), 4)
	assert.Equal(t, path, store.Current().Source())

	writeKnowledge(t, path, reloadedYAML)
	kb, err := store.Reload()
	require.NoError(t, err)
	assert.Len(t, kb.Categories(), 2)
	assert.Same(t, kb, store.Current())
}

func TestKnowledgeStore_BadReloadKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	writeKnowledge(t, path, testKnowledgeYAML)

	store, err := NewFileKnowledgeStore(path)
	require.NoError(t, err)
	before := store.Current()

	writeKnowledge(t, path, "categories: [")
	_, err = store.Reload()
	assert.ErrorIs(t, err, ErrInvalidKnowledge)
	assert.Same(t, before, store.Current())
}

func TestKnowledgeStore_InitialLoadMustSucceed(t *testing.T) {
	_, err := NewFileKnowledgeStore(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestKnowledgeStore_WatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	writeKnowledge(t, path, testKnowledgeYAML)

	store, err := NewFileKnowledgeStore(path)
	require.NoError(t, err)
	store.debounce = 10 * time.Millisecond
	require.NoError(t, store.Watch(path))
	defer store.Close()

	// unrelated files in the same directory are ignored
	writeKnowledge(t, filepath.Join(dir, "other.yaml"), "not: knowledge")
	writeKnowledge(t, path, reloadedYAML)

	assert.Eventually(t, func() bool {
		_, ok := store.Current().Category("weather")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestStaticKnowledge(t *testing.T) {
	kb := testKnowledge(t)
	store := StaticKnowledge(kb)

	assert.Same(t, kb, store.Current())
	reloaded, err := store.Reload()
	require.NoError(t, err)
	assert.Same(t, kb, reloaded)
	assert.NoError(t, store.Close())
}
