package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

// recompressOperation wraps a source operation with a DataConverter,
// narrowing or converting its output format/compression. See spec.md
// section 4.2 and 4.5.
type recompressOperation struct {
	source    Operation
	converter tilekit.DataConverter
	params    tilekit.TilesReaderParameters
}

// RegisterRecompress installs the built-in "recompress" transform, which
// re-encodes and/or recompresses its source's tiles. Node properties:
// format (optional, defaults to source format), compression (optional,
// defaults to source compression), force (bool, optional).
func RegisterRecompress(f *Factory) {
	f.RegisterTransform("recompress", buildRecompress)
}

func buildRecompress(ctx context.Context, baseDir string, node vdl.Node, source Operation) (Operation, error) {
	srcParams := source.Parameters()

	dstFormat := srcParams.Format
	if v, ok := node.Prop("format"); ok {
		f, err := tilekit.ParseTileFormat(v)
		if err != nil {
			return nil, fmt.Errorf("pipeline: recompress: %w", err)
		}
		dstFormat = f
	}

	dstComp := srcParams.Compression
	if v, ok := node.Prop("compression"); ok {
		c, err := tilekit.ParseTileCompression(v)
		if err != nil {
			return nil, fmt.Errorf("pipeline: recompress: %w", err)
		}
		dstComp = c
	}

	force := false
	if v, ok := node.Prop("force"); ok {
		force = v == "true"
	}

	converter, err := tilekit.NewTileRecompressor(srcParams.Format, srcParams.Compression, dstFormat, dstComp, force, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: recompress: %w", err)
	}

	return &recompressOperation{
		source:    source,
		converter: converter,
		params: tilekit.TilesReaderParameters{
			Format:      dstFormat,
			Compression: dstComp,
			Pyramid:     srcParams.Pyramid,
		},
	}, nil
}

func (r *recompressOperation) ContainerName() string { return r.source.ContainerName() }
func (r *recompressOperation) Name() string           { return r.source.Name() }

func (r *recompressOperation) Parameters() tilekit.TilesReaderParameters { return r.params }

func (r *recompressOperation) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	return r.source.Meta(ctx)
}

func (r *recompressOperation) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	blob, ok, err := r.source.TileData(ctx, coord)
	if err != nil || !ok {
		return tilekit.Blob{}, false, err
	}
	out, err := r.converter.Run(blob)
	if err != nil {
		return tilekit.Blob{}, false, fmt.Errorf("pipeline: recompress tile %v: %w", coord, err)
	}
	return out, true, nil
}

func (r *recompressOperation) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	src := r.source.BBoxTileStream(ctx, bbox)
	return src.FilterMapBlobParallel(ctx, 0, func(b tilekit.Blob) (tilekit.Blob, bool, error) {
		out, err := r.converter.Run(b)
		if err != nil {
			log.Printf("pipeline: recompress, dropping tile: %v", err)
			return tilekit.Blob{}, false, nil
		}
		return out, true, nil
	})
}

func (r *recompressOperation) OverrideCompression(c tilekit.TileCompression) error {
	return tilekit.ErrCompressionNotOverridable
}
