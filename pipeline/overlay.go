package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

// overlayOperation implements first-wins multi-source tile composition.
// See spec.md section 4.6.
type overlayOperation struct {
	name       string
	children   []Operation
	params     tilekit.TilesReaderParameters
	compressed tilekit.TileCompression
}

// RegisterOverlay installs the built-in overlay_tiles operation under name
// "overlay_tiles" in f.
func RegisterOverlay(f *Factory) {
	f.RegisterOverlay("overlay_tiles", buildOverlay)
}

func buildOverlay(ctx context.Context, baseDir string, node vdl.Node, children []Operation) (Operation, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("pipeline: overlay_tiles requires at least one child")
	}
	format := children[0].Parameters().Format
	pyramid := tilekit.NewEmptyPyramid()
	compSet := map[tilekit.TileCompression]bool{}
	for i, child := range children {
		p := child.Parameters()
		if p.Format != format {
			return nil, fmt.Errorf("pipeline: overlay_tiles children must share a tile_format, child 0 is %s but child %d is %s", format, i, p.Format)
		}
		compSet[p.Compression] = true
		pyramid.IncludeBBoxPyramid(p.Pyramid)
	}
	outComp := tilekit.CompressionNone
	if len(compSet) == 1 {
		for c := range compSet {
			outComp = c
		}
	}
	return &overlayOperation{
		name:     "overlay_tiles",
		children: children,
		params: tilekit.TilesReaderParameters{
			Format:      format,
			Compression: outComp,
			Pyramid:     pyramid,
		},
		compressed: outComp,
	}, nil
}

func (o *overlayOperation) ContainerName() string { return "overlay" }
func (o *overlayOperation) Name() string           { return o.name }

func (o *overlayOperation) Parameters() tilekit.TilesReaderParameters { return o.params }

func (o *overlayOperation) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	for _, child := range o.children {
		blob, ok, err := child.Meta(ctx)
		if err != nil {
			return tilekit.Blob{}, false, err
		}
		if ok {
			return blob, true, nil
		}
	}
	return tilekit.Blob{}, false, nil
}

func (o *overlayOperation) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	for _, child := range o.children {
		blob, ok, err := child.TileData(ctx, coord)
		if err != nil {
			return tilekit.Blob{}, false, err
		}
		if !ok {
			continue
		}
		recompressed, err := tilekit.Recompress(blob, child.Parameters().Compression, o.params.Compression)
		if err != nil {
			return tilekit.Blob{}, false, fmt.Errorf("pipeline: overlay recompress: %w", err)
		}
		return recompressed, true, nil
	}
	return tilekit.Blob{}, false, nil
}

// BBoxTileStream walks bbox in the grid chunks used by TileBBox.IterBBoxGrid
// so overlay precedence can be resolved with a dense per-chunk array, per
// spec.md section 4.6. Within a chunk results are emitted in the order the
// slots were filled; across chunks there is no ordering guarantee.
func (o *overlayOperation) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	chunks := bbox.IterBBoxGrid(overlayChunkSize)
	makers := make([]func(context.Context) *tilekit.TileStream, 0, len(chunks))
	for _, chunk := range chunks {
		chunk := chunk
		makers = append(makers, func(ctx context.Context) *tilekit.TileStream {
			return o.streamChunk(ctx, chunk)
		})
	}
	return tilekit.FromStreamIter(ctx, makers)
}

// overlayChunkSize is the side length, in tiles, of the square grid chunks;
// grid chunking exists to bound per-chunk memory, not to tune concurrency.
const overlayChunkSize = 256

func (o *overlayOperation) streamChunk(ctx context.Context, chunk tilekit.TileBBox) *tilekit.TileStream {
	count := chunk.Count()
	slots := make([]*tilekit.TileEntry, count)
	var order []int

	for _, child := range o.children {
		entries, err := child.BBoxTileStream(ctx, chunk).Collect()
		if err != nil {
			return tilekit.FromError(ctx, fmt.Errorf("pipeline: overlay child %s: %w", child.Name(), err))
		}
		for _, e := range entries {
			idx := chunk.GetTileIndex3(e.Coord)
			if idx < 0 || idx >= int(count) || slots[idx] != nil {
				continue
			}
			recompressed, err := tilekit.Recompress(e.Blob, child.Parameters().Compression, o.params.Compression)
			if err != nil {
				log.Printf("pipeline: overlay recompress, dropping tile %v: %v", e.Coord, err)
				continue
			}
			entry := tilekit.TileEntry{Coord: e.Coord, Blob: recompressed}
			slots[idx] = &entry
			order = append(order, idx)
		}
	}

	out := make([]tilekit.TileEntry, 0, len(order))
	for _, idx := range order {
		out = append(out, *slots[idx])
	}
	return tilekit.FromVec(ctx, out)
}

func (o *overlayOperation) OverrideCompression(c tilekit.TileCompression) error {
	return tilekit.ErrCompressionNotOverridable
}
