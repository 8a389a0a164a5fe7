package record

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/pydigger/pkg/errors"
)

// WriteJSON writes v as indented JSON to path. The data is written to a
// temporary sibling first and renamed into place, so readers never observe
// a partial file. Parent directories are created as needed.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "encode %s", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".pydigger-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "rename into %s", path)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v. A missing file is reported
// with os.ErrNotExist in the chain; other failures are STORAGE_ERRORs.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(errors.ErrCodeStorage, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "decode %s", path)
	}
	return nil
}
