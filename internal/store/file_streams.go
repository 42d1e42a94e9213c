package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
)

const (
	streamsDir = "streams"
	streamExt  = ".json"
)

// FileStreams stores each stream as one JSON file under dir/streams.
type FileStreams struct {
	dir string
	log *logrus.Logger
	mu  deadlock.Mutex
}

var (
	_ domain.StreamStore   = (*FileStreams)(nil)
	_ domain.StreamCatalog = (*FileStreams)(nil)
)

// NewFileStreams returns a FileStreams rooted at dir.
func NewFileStreams(dir string, log *logrus.Logger) *FileStreams {
	if log == nil {
		log = logrus.New()
	}
	return &FileStreams{dir: filepath.Join(dir, streamsDir), log: log}
}

func (s *FileStreams) path(id domain.StreamID) (string, error) {
	if err := validStreamID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, string(id)+streamExt), nil
}

// LoadStream reads the anchors of id; a missing file is an empty stream.
func (s *FileStreams) LoadStream(_ context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(id)
}

func (s *FileStreams) loadLocked(id domain.StreamID) ([]domain.Anchor, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	var anchors []domain.Anchor
	if err := readJSON(p, &anchors); err != nil {
		return nil, fmt.Errorf("read stream %s: %w", id, err)
	}
	return anchors, nil
}

// PersistAnchor rewrites the stream file with a appended.
func (s *FileStreams) PersistAnchor(_ context.Context, id domain.StreamID, a domain.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	anchors, err := s.loadLocked(id)
	if err != nil {
		return err
	}
	if err := checkExtends(id, headOf(id, anchors), len(anchors), a); err != nil {
		return err
	}
	p, _ := s.path(id)
	if err := writeJSON(p, append(anchors, a), 0o600); err != nil {
		return fmt.Errorf("write stream %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"stream_id": id, "position": len(anchors)}).Debug("anchor persisted")
	return nil
}

// ListStreams returns the stream IDs that have a file.
func (s *FileStreams) ListStreams(context.Context) ([]domain.StreamID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []domain.StreamID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, streamExt) {
			continue
		}
		ids = append(ids, domain.StreamID(strings.TrimSuffix(name, streamExt)))
	}
	slices.Sort(ids)
	return ids, nil
}
