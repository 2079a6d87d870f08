package logging

import (
	"os"
	"path/filepath"
)

// AlertFile receives serialized alerts, one call per line.
type AlertFile interface {
	Append(line []byte) error
	Close() error
}

// AlertFileSystem is where file alert logs are written.
type AlertFileSystem interface {
	MkDir(dir string) error
	Open(name string) (AlertFile, error)
}

// OSAlertFileSystem writes alert files on the local disk.
type OSAlertFileSystem struct{}

// MkDir creates dir and its parents.
func (OSAlertFileSystem) MkDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Open opens name for appending, creating it if needed.
func (OSAlertFileSystem) Open(name string) (AlertFile, error) {
	f, err := os.OpenFile(filepath.Clean(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, err
	}
	return osAlertFile{f}, nil
}

type osAlertFile struct {
	*os.File
}

func (f osAlertFile) Append(line []byte) error {
	_, err := f.Write(line)
	return err
}
