package source

import (
	"context"

	"github.com/matzehuels/runshape/pkg/run"
)

// File reads a snapshot file. The format follows the extension.
type File struct {
	Path string
}

// NewFile returns a source for the snapshot at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Fetch decodes the file. Any read or validation error yields a failed query.
func (f *File) Fetch(ctx context.Context) run.Query {
	if err := ctx.Err(); err != nil {
		return run.Failed(err)
	}
	snap, err := run.DecodeFile(f.Path)
	if err != nil {
		return run.Failed(err)
	}
	return run.Ready(snap)
}
