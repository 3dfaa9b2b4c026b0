package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"TrendLab/internal/domain/models"
	domainrepo "TrendLab/internal/domain/repository"
	"TrendLab/pkg/logger"
)

// FileArtifactStore persists the model artifact as a single JSON file.
// Save writes to a temp file in the same directory and renames it over
// the target, so readers never observe a partially written artifact.
type FileArtifactStore struct {
	dir  string
	name string
	log  *logger.Logger
}

func NewFileArtifactStore(dir, name string, log *logger.Logger) *FileArtifactStore {
	return &FileArtifactStore{dir: dir, name: name, log: log}
}

func (s *FileArtifactStore) path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *FileArtifactStore) Save(_ context.Context, a *models.ModelArtifact) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, s.name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path()); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}

	s.log.Info("model artifact saved",
		logger.String("path", s.path()),
		logger.Int("bytes", len(data)))
	return nil
}

func (s *FileArtifactStore) Load(_ context.Context) (*models.ModelArtifact, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainrepo.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a models.ModelArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path(), domainrepo.ErrArtifactCorrupt)
	}
	if len(a.Scaler.FeatureNames) == 0 || len(a.Model) == 0 {
		return nil, fmt.Errorf("%s: missing sections: %w", s.path(), domainrepo.ErrArtifactCorrupt)
	}
	return &a, nil
}
