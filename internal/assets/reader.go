// Package assets holds the boundary types the rendering core consumes:
// file reading, decoded bitmaps, raw models, glyph fonts and the bump
// arena that backs long-lived asset memory.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrArenaFull    = errors.New("arena out of space")
	ErrInvalidSpan  = errors.New("span outside arena")
	ErrEmptyBitmap  = errors.New("bitmap has no pixels")
	ErrInvalidModel = errors.New("raw model vertex data is not a whole number of vertices")
)

// FileReader reads whole files. FreeFile hands the bytes back once the
// caller is done with them; implementations that pool memory reuse them.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	FreeFile(data []byte)
}

// DiskReader reads from the local filesystem.
type DiskReader struct{}

func (DiskReader) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// FreeFile is a no-op; the garbage collector reclaims the bytes.
func (DiskReader) FreeFile([]byte) {}

// FSReader reads from an fs.FS, e.g. an embedded asset tree.
type FSReader struct {
	FS fs.FS
}

func (r FSReader) ReadFile(path string) ([]byte, error) {
	data, err := fs.ReadFile(r.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (FSReader) FreeFile([]byte) {}
