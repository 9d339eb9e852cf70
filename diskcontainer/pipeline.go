package diskcontainer

import (
	"context"
	"path/filepath"

	"github.com/tile-kit/tilekit/pipeline"
	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

// RegisterRead installs the "directory" VDL operation. Required properties:
// "path" (resolved against the factory base directory when relative) and
// "format"; "compression" is optional and defaults to none - a directory
// container cannot discover its own format/compression without being told,
// unlike mbtiles' metadata table.
func RegisterRead(f *pipeline.Factory) {
	f.RegisterRead("directory", buildRead)
}

func buildRead(ctx context.Context, baseDir string, node vdl.Node) (pipeline.Operation, error) {
	path, err := node.RequireProp("path")
	if err != nil {
		return nil, err
	}
	formatStr, err := node.RequireProp("format")
	if err != nil {
		return nil, err
	}
	format, err := tilekit.ParseTileFormat(formatStr)
	if err != nil {
		return nil, err
	}
	compression := tilekit.CompressionNone
	if v, ok := node.Prop("compression"); ok {
		compression, err = tilekit.ParseTileCompression(v)
		if err != nil {
			return nil, err
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return Open(path, format, compression)
}
