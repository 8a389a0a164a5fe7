package record

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pydigger/pkg/errors"
)

// Store persists one JSON document per package name under a base directory.
//
// Paths are sharded by the first two characters of the lowercased name:
// "requests" lives at <dir>/re/requests.json, while names of two characters
// or fewer live directly at <dir>/<name>.json.
//
// The store does no locking; callers are expected to use it from a single
// goroutine.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily
// on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory of the store.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path of the record for name.
// It returns an INVALID_PACKAGE error for names that are unsafe as file names.
func (s *Store) Path(name string) (string, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return "", err
	}
	lower := strings.ToLower(name)
	file := lower + ".json"
	if runes := []rune(lower); len(runes) > 2 {
		return filepath.Join(s.dir, string(runes[:2]), file), nil
	}
	return filepath.Join(s.dir, file), nil
}

// Load reads the stored record for name.
// It returns (nil, nil) when no record exists and a STORAGE_ERROR when the
// file cannot be read or decoded.
func (s *Store) Load(name string) (*Record, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read record %s", path)
	}
	return decode(path, data)
}

// Save writes r, replacing any previous record of the same name.
// See WriteJSON for the write protocol.
func (s *Store) Save(r *Record) error {
	if err := r.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "invalid record")
	}
	path, err := s.Path(r.Name)
	if err != nil {
		return err
	}
	return WriteJSON(path, r)
}

// WalkFunc is called once per record file found by [Store.Walk].
// Exactly one of r and err is non-nil. Returning an error stops the walk.
type WalkFunc func(path string, r *Record, err error) error

// Walk visits every *.json file below the store directory, sharded or not.
// Unreadable or malformed files are reported to fn with a STORAGE_ERROR
// rather than aborting the walk. A missing directory is an empty store.
func (s *Store) Walk(fn WalkFunc) error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.dir {
				return errors.Wrap(errors.ErrCodeStorage, err, "walk %s", s.dir)
			}
			return fn(path, nil, errors.Wrap(errors.ErrCodeStorage, err, "walk %s", path))
		}
		if d.IsDir() || filepath.Ext(path) != ".json" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fn(path, nil, errors.Wrap(errors.ErrCodeStorage, err, "read record %s", path))
		}
		r, err := decode(path, data)
		if err != nil {
			return fn(path, nil, err)
		}
		return fn(path, r, nil)
	})
}

func decode(path string, data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode record %s", path)
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, errors.New(errors.ErrCodeStorage, "malformed record %s: no name", path)
	}
	return &r, nil
}
