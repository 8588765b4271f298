// Package rulestore provides ruleset document sources backing the loader.
// Documents are stored verbatim; verification always happens in the loader.
package rulestore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

// indexFile is the version-resolution index file name inside a store
// directory.
const indexFile = "index.json"

// FSStore serves ruleset documents from a directory of JSON files, one file
// per ruleset id.
type FSStore struct {
	dir string
}

// NewFSStore creates a filesystem store rooted at dir
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

// Document returns the raw bytes for a ruleset id
func (s *FSStore) Document(id string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.RulesetNotFound(id)
		}
		return nil, errors.Store("read ruleset document "+id, err)
	}
	return data, nil
}

// Index returns the raw version-resolution index
func (s *FSStore) Index() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.RulesetNotFound("index")
		}
		return nil, errors.Store("read ruleset index", err)
	}
	return data, nil
}

// List returns all stored ruleset ids, sorted
func (s *FSStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Store("list ruleset directory", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == indexFile {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)

	logging.Debug("listed ruleset documents", zap.String("dir", s.dir), zap.Int("count", len(ids)))
	return ids, nil
}
