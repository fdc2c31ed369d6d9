package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/leeforge/bmpscale/utils"
)

const writeBufferSize = 64 << 10

// Destination is an output file being written.
// Exactly one of Close or Discard must be called.
type Destination interface {
	io.Writer
	// Close flushes and closes the file. In atomic mode the temporary file
	// is renamed over the destination path.
	Close() error
	// Discard closes the file and removes whatever was written.
	Discard() error
	// Name returns the destination path as given by the caller.
	Name() string
}

// LocalProvider opens sources and creates destinations on the local filesystem.
type LocalProvider struct {
	atomic bool
}

// NewLocalProvider creates a local provider. With atomic set, destinations are
// written to a temporary sibling file and only appear under their final name
// once Close succeeds.
func NewLocalProvider(atomic bool) *LocalProvider {
	return &LocalProvider{atomic: atomic}
}

// Open opens a source file for reading.
func (p *LocalProvider) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Create creates or truncates the destination file.
func (p *LocalProvider) Create(ctx context.Context, path string) (Destination, error) {
	writePath := path
	if p.atomic {
		writePath = utils.SiblingPath(path, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	}

	f, err := os.Create(writePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &fileDestination{
		f:         f,
		w:         bufio.NewWriterSize(f, writeBufferSize),
		path:      path,
		writePath: writePath,
	}, nil
}

// Exists checks if a file exists
func (p *LocalProvider) Exists(ctx context.Context, path string) (bool, error) {
	isDir, exists, err := utils.Exists(path)
	if err != nil {
		return false, err
	}
	return exists && !isDir, nil
}

func (p *LocalProvider) Name() string {
	if p.atomic {
		return "local-atomic"
	}
	return "local"
}

type fileDestination struct {
	f         *os.File
	w         *bufio.Writer
	path      string
	writePath string
	done      bool
}

func (d *fileDestination) Write(b []byte) (int, error) {
	return d.w.Write(b)
}

func (d *fileDestination) Name() string {
	return d.path
}

func (d *fileDestination) Close() error {
	if d.done {
		return nil
	}
	d.done = true

	flushErr := d.w.Flush()
	closeErr := d.f.Close()
	if flushErr != nil || closeErr != nil {
		if d.writePath != d.path {
			_ = os.Remove(d.writePath)
		}
		if flushErr != nil {
			return fmt.Errorf("failed to flush file: %w", flushErr)
		}
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if d.writePath != d.path {
		if err := os.Rename(d.writePath, d.path); err != nil {
			_ = os.Remove(d.writePath)
			return fmt.Errorf("failed to move file into place: %w", err)
		}
	}
	return nil
}

func (d *fileDestination) Discard() error {
	if d.done {
		return nil
	}
	d.done = true

	_ = d.f.Close()
	if err := os.Remove(d.writePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
