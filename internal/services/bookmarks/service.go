// Package bookmarks keeps saved aliases in a watched JSON file.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
)

const debounceInterval = 100 * time.Millisecond

var (
	// ErrExists is returned when adding an alias that is already saved.
	ErrExists = errors.New("bookmark already exists")
	// ErrNotFound is returned when removing an alias that is not saved.
	ErrNotFound = errors.New("bookmark not found")
)

// File is the on-disk layout.
type File struct {
	Bookmarks []models.Bookmark `json:"bookmarks"`
	Version   int               `json:"version,omitempty"`
}

// Event is a bookmarks service event.
type Event struct {
	Error    error
	Bookmark *models.Bookmark
	Type     EventType
}

// EventType defines the type of bookmark event.
type EventType int

const (
	EventLoaded EventType = iota
	EventChanged
	EventAdded
	EventRemoved
	EventError
)

// Service manages bookmarks with file watching and change notifications.
type Service struct {
	mu            sync.RWMutex
	bookmarks     []models.Bookmark
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New loads or creates the bookmarks file and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("bookmarks path is empty")
	}

	s := &Service{
		bookmarks: make([]models.Bookmark, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create bookmarks directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load bookmarks: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create bookmarks file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded})
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the bookmarks file path.
func (s *Service) Path() string {
	return s.filePath
}

// List returns a copy of all bookmarks, oldest first.
func (s *Service) List() []models.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bookmarks)
}

// Has reports whether alias is saved.
func (s *Service) Has(alias string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(alias) >= 0
}

// Count returns the number of bookmarks.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookmarks)
}

// Add saves alias with an optional label.
func (s *Service) Add(alias, label string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return errors.New("alias is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(alias) >= 0 {
		return fmt.Errorf("%w: %s", ErrExists, alias)
	}

	b := models.Bookmark{Alias: alias, Label: label, AddedAt: time.Now()}
	s.bookmarks = append(s.bookmarks, b)

	if err := s.saveLocked(); err != nil {
		s.bookmarks = s.bookmarks[:len(s.bookmarks)-1]
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}

	s.sendEvent(Event{Type: EventAdded, Bookmark: &b})
	return nil
}

// Remove deletes alias.
func (s *Service) Remove(alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(alias)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, alias)
	}

	removed := s.bookmarks[idx]
	previous := slices.Clone(s.bookmarks)
	s.bookmarks = slices.Delete(s.bookmarks, idx, idx+1)

	if err := s.saveLocked(); err != nil {
		s.bookmarks = previous
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}

	s.sendEvent(Event{Type: EventRemoved, Bookmark: &removed})
	return nil
}

// Toggle adds alias when missing and removes it otherwise. It reports whether
// alias is saved afterwards.
func (s *Service) Toggle(alias string) (bool, error) {
	if s.Has(alias) {
		return false, s.Remove(alias)
	}
	return true, s.Add(alias, "")
}

func (s *Service) indexLocked(alias string) int {
	return slices.IndexFunc(s.bookmarks, func(b models.Bookmark) bool {
		return b.Alias == alias
	})
}

func parseFile(data []byte) ([]models.Bookmark, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Bookmark{}, nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks file: %w", err)
	}

	// Drop blanks and duplicates written by hand.
	seen := make(map[string]bool, len(f.Bookmarks))
	out := make([]models.Bookmark, 0, len(f.Bookmarks))
	for _, b := range f.Bookmarks {
		b.Alias = strings.TrimSpace(b.Alias)
		if b.Alias == "" || seen[b.Alias] {
			continue
		}
		seen[b.Alias] = true
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	bookmarks, err := parseFile(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.bookmarks = bookmarks
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes through a temp file and rename (must hold lock).
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(File{Bookmarks: s.bookmarks, Version: 1}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so renames onto the file are seen.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("bookmarks watcher error", "error", err)
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads after an edit. Reloads that match memory, such as
// our own saves, are silent.
func (s *Service) handleFileChange() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	bookmarks, err := parseFile(data)
	if err != nil {
		logger.Warn("ignoring invalid bookmarks file", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.Lock()
	same := slices.EqualFunc(s.bookmarks, bookmarks, func(a, b models.Bookmark) bool {
		return a.Alias == b.Alias && a.Label == b.Label
	})
	s.bookmarks = bookmarks
	s.mu.Unlock()

	if same {
		return
	}

	logger.Info("bookmarks reloaded", "path", s.filePath, "count", len(bookmarks))
	s.sendEvent(Event{Type: EventChanged})
}

// sendEvent sends an event without blocking, dropping the oldest when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
