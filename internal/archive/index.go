package archive

import (
	"encoding/json"
	"os"
	"path"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/models"
)

// indexFile is the persisted hash→path and path→metadata mapping inside the base dir.
const indexFile = "meta.json"

// Index maps content hashes to archived relative paths and relative paths to
// their metadata entries. All relative paths use forward slashes regardless of
// host conventions, since they are compared for equality and returned over the
// API. The index is read and written as a whole; callers follow a
// load-mutate-save discipline serialized by the owning service.
type Index struct {
	Hashes    map[string]string       `json:"hashes"`
	Documents map[string]models.Entry `json:"documents"`
}

// NewIndex returns an empty index with both maps allocated.
func NewIndex() *Index {
	return &Index{
		Hashes:    make(map[string]string),
		Documents: make(map[string]models.Entry),
	}
}

// LoadIndex reads the index from path. A missing or corrupt file yields an
// empty index: history is lost but the process keeps running.
func LoadIndex(path string, logger *zap.Logger) *Index {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("index unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return NewIndex()
	}
	idx := NewIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		logger.Warn("index corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return NewIndex()
	}
	if idx.Hashes == nil {
		idx.Hashes = make(map[string]string)
	}
	if idx.Documents == nil {
		idx.Documents = make(map[string]models.Entry)
	}
	return idx
}

// Save writes the full index atomically (temp file + rename), so a partial
// write never corrupts the previous version.
func (i *Index) Save(path string) error {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// Set records an archived document under rel, updating both mappings.
// An empty hash is tolerated: the document is then not duplicate-detectable.
func (i *Index) Set(rel, hash string, entry models.Entry) {
	if hash != "" {
		i.Hashes[hash] = rel
	}
	i.Documents[rel] = entry
}

// Remove deletes rel from the documents mapping and prunes every hash entry
// pointing at it, keeping the hash→path mapping referentially consistent.
func (i *Index) Remove(rel string) {
	norm := path.Clean(rel)
	delete(i.Documents, norm)
	for h, p := range i.Hashes {
		if path.Clean(p) == norm {
			delete(i.Hashes, h)
		}
	}
}

// Rename moves the entry at oldRel to newRel in both mappings.
func (i *Index) Rename(oldRel, newRel string, entry models.Entry) {
	delete(i.Documents, path.Clean(oldRel))
	i.Documents[newRel] = entry
	for h, p := range i.Hashes {
		if path.Clean(p) == path.Clean(oldRel) {
			i.Hashes[h] = newRel
		}
	}
}
