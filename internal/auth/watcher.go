package auth

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads the bearer token from a file and keeps it current: the
// file is watched for writes, so dropping a fresh token into it takes effect
// without restarting. A slow ticker backs up missed file events.
type FileSource struct {
	path    string
	token   cachedToken
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileSource loads the token file and starts watching it.
func NewFileSource(path string) (*FileSource, error) {
	s := &FileSource{
		path: path,
		done: make(chan struct{}),
	}

	if err := s.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch token file: %w", err)
	}
	s.watcher = watcher

	go s.watch()

	return s, nil
}

// Token returns the current normalized token.
func (s *FileSource) Token() (string, error) {
	token := s.token.get()
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", s.path)
	}
	return token, nil
}

// Close stops watching the token file.
func (s *FileSource) Close() error {
	close(s.done)
	return s.watcher.Close()
}

func (s *FileSource) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}
	s.token.set(Normalize(string(data)))
	return nil
}

func (s *FileSource) watch() {
	// Backup polling in case file events are missed, e.g. editors that
	// replace the file instead of writing it.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := s.reload(); err != nil {
					log.Printf("[auth] reload token file: %v", err)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[auth] token file watcher error: %v", err)
		case <-ticker.C:
			if err := s.reload(); err != nil {
				log.Printf("[auth] reload token file: %v", err)
			}
		}
	}
}
