package mbtiles

import (
	"context"
	"path/filepath"

	"github.com/tile-kit/tilekit/pipeline"
	"github.com/tile-kit/tilekit/vdl"
)

// RegisterRead installs the "read" VDL operation, which opens an MBTiles
// file named by the "filename" property, resolved against the factory's
// base directory when relative.
func RegisterRead(f *pipeline.Factory) {
	f.RegisterRead("read", buildRead)
}

func buildRead(ctx context.Context, baseDir string, node vdl.Node) (pipeline.Operation, error) {
	filename, err := node.RequireProp("filename")
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(baseDir, filename)
	}
	return Open(filename)
}
