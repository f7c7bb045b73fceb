package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/xeipuuv/gojsonschema"
)

// recordSchema is the shape a persisted record must satisfy to count as a
// prior run. Anything else — truncated writes, hand-edited files, records
// from incompatible versions — is treated as "no prior run" rather than an
// error, so a damaged record can never wedge the build.
const recordSchema = `{
  "type": "object",
  "required": ["timestamp", "success", "version"],
  "properties": {
    "timestamp": {"type": "integer", "minimum": 0},
    "success": {"type": "boolean"},
    "version": {"type": "string"},
    "stats": {
      "type": "object",
      "properties": {
        "xmlFetchTime": {"type": "integer"},
        "parseTime": {"type": "integer"},
        "generateTime": {"type": "integer"},
        "totalTime": {"type": "integer"}
      }
    }
  }
}`

// FileStore keeps the run record as a small JSON file at a fixed path,
// overwritten on every run.
type FileStore struct {
	path   string
	schema *gojsonschema.Schema
}

// NewFileStore creates a FileStore for the given path.
func NewFileStore(path string) (*FileStore, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling run-record schema: %w", err)
	}
	return &FileStore{path: path, schema: schema}, nil
}

// Path returns the record file path (needed for publish staging).
func (s *FileStore) Path() string {
	return s.path
}

// Last reads the persisted record. A missing, unreadable, or
// schema-invalid file yields (nil, nil).
func (s *FileStore) Last(_ context.Context) (*RunRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Warn("could not read run record, treating as first run", "path", s.path, "err", err)
		return nil, nil
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil || !result.Valid() {
		log.Warn("run record invalid, treating as first run", "path", s.path)
		return nil, nil
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("run record unparsable, treating as first run", "path", s.path, "err", err)
		return nil, nil
	}
	return &rec, nil
}

// Put writes the record, replacing any previous one.
func (s *FileStore) Put(_ context.Context, rec *RunRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing run record %s: %w", s.path, err)
	}
	return nil
}
