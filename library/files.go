package library

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// recordExt is the extension of every record file.
const recordExt = ".properties"

// recordDir maps one record to one file inside a fixed directory. The
// store that owns a recordDir is the only writer of that directory.
type recordDir struct {
	dir    string
	logger *log.Logger
}

// newRecordDir creates the backing directory if needed. A directory
// that cannot be created is fatal: the owning store cannot operate
// without it.
func newRecordDir(dir string, logger *log.Logger) (recordDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return recordDir{}, fmt.Errorf("create record dir %s: %w", dir, err)
	}
	return recordDir{dir: dir, logger: logger}, nil
}

func (d recordDir) path(name string) string {
	return filepath.Join(d.dir, name+recordExt)
}

// write replaces the record file for name wholesale (truncate and
// rewrite). The error is both logged and returned; callers must not
// commit a record to their cache when write fails.
func (d recordDir) write(name, comment string, p map[string]string) error {
	path := d.path(name)
	f, err := os.Create(path)
	if err != nil {
		d.logger.Printf("failed to save %s: %v", path, err)
		return fmt.Errorf("save record %s: %w", path, err)
	}
	if err := encodeProps(f, comment, p); err != nil {
		f.Close()
		d.logger.Printf("failed to save %s: %v", path, err)
		return fmt.Errorf("save record %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		d.logger.Printf("failed to save %s: %v", path, err)
		return fmt.Errorf("save record %s: %w", path, err)
	}
	return nil
}

// delete removes the record file for name. Deleting a record that has
// no file is not an error.
func (d recordDir) delete(name string) error {
	path := d.path(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Printf("failed deleting %s: %v", path, err)
		return fmt.Errorf("delete record %s: %w", path, err)
	}
	return nil
}

// loadAll reads every record file in the directory and hands the
// decoded mapping to fn. A file that cannot be read or decoded is
// logged and skipped; one bad record never aborts the whole load.
func (d recordDir) loadAll(fn func(p map[string]string)) error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("list record dir %s: %w", d.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		path := filepath.Join(d.dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			d.logger.Printf("failed to load %s: %v", path, err)
			continue
		}
		p, err := decodeProps(f)
		f.Close()
		if err != nil {
			d.logger.Printf("failed to load %s: %v", path, err)
			continue
		}
		fn(p)
	}
	return nil
}
