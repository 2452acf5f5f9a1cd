package service

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"portfolio-bot/internal/logger"
)

// KnowledgeLoader builds a fresh knowledge snapshot.
type KnowledgeLoader func() (*KnowledgeBase, error)

// KnowledgeStore serves the current knowledge snapshot and swaps it
// atomically on reload. A failed reload keeps the previous snapshot.
type KnowledgeStore struct {
	current atomic.Pointer[KnowledgeBase]
	load    KnowledgeLoader

	reloadMu sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	debounce time.Duration
}

func NewKnowledgeStore(load KnowledgeLoader) (*KnowledgeStore, error) {
	kb, err := load()
	if err != nil {
		return nil, err
	}
	s := &KnowledgeStore{load: load, debounce: 100 * time.Millisecond}
	s.current.Store(kb)
	return s, nil
}

func NewFileKnowledgeStore(path string) (*KnowledgeStore, error) {
	return NewKnowledgeStore(func() (*KnowledgeBase, error) {
		return LoadKnowledgeFile(path)
	})
}

// StaticKnowledge wraps a single snapshot; Reload returns it unchanged.
func StaticKnowledge(kb *KnowledgeBase) *KnowledgeStore {
	s, _ := NewKnowledgeStore(func() (*KnowledgeBase, error) { return kb, nil })
	return s
}

func (s *KnowledgeStore) Current() *KnowledgeBase {
	return s.current.Load()
}

func (s *KnowledgeStore) Reload() (*KnowledgeBase, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	kb, err := s.load()
	if err != nil {
		logger.Component("knowledge").Error().Err(err).Msg("reload failed, keeping previous knowledge base")
		return nil, err
	}
	s.current.Store(kb)
	logger.Component("knowledge").Info().
		Str("source", kb.Source()).
		Int("categories", len(kb.Categories())).
		Msg("knowledge base reloaded")
	return kb, nil
}

// Watch reloads whenever path is written or replaced. The parent directory
// is watched so editors that rename over the file are noticed too.
func (s *KnowledgeStore) Watch(path string) error {
	if s.watcher != nil {
		return fmt.Errorf("knowledge store already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch knowledge directory: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watchLoop(filepath.Base(path))

	logger.Component("knowledge").Info().Str("path", path).Msg("file watcher started")
	return nil
}

func (s *KnowledgeStore) watchLoop(name string) {
	defer s.wg.Done()
	log := logger.Component("knowledge")

	var pending <-chan time.Time
	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("knowledge file changed")
				// coalesce bursts of events from one save
				pending = time.After(s.debounce)
			}

		case <-pending:
			pending = nil
			_, _ = s.Reload()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (s *KnowledgeStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}
