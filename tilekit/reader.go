package tilekit

import (
	"context"
	"errors"
)

// ErrCompressionNotOverridable is returned by pipeline operations from
// OverrideCompression: wire compression of a pipeline is a derived property
// of the operation graph and cannot be forced. See spec.md section 9
// ("Reader vs pipeline").
var ErrCompressionNotOverridable = errors.New("tilekit: compression of a pipeline cannot be overridden")

// Reader is the external tile-source contract consumed by the core.
// See spec.md section 6.
type Reader interface {
	// ContainerName identifies the backing container kind, e.g. "mbtiles".
	ContainerName() string
	// Name identifies this particular source, e.g. a filename.
	Name() string
	Parameters() TilesReaderParameters
	// Meta returns the source's metadata blob, if any.
	Meta(ctx context.Context) (Blob, bool, error)
	// TileData returns the tile at coord, compressed and formatted per
	// Parameters(). Returns (Blob{}, false, nil) when the tile is absent.
	TileData(ctx context.Context, coord TileCoord3) (Blob, bool, error)
	// BBoxTileStream streams every tile within bbox.
	BBoxTileStream(ctx context.Context, bbox TileBBox) *TileStream
	// OverrideCompression forces the reader's declared wire compression.
	// Pipeline operations reject this with ErrCompressionNotOverridable.
	OverrideCompression(c TileCompression) error
}

// Writer is the external tile-sink contract consumed by the converter
// driver. See spec.md section 6.
type Writer interface {
	// WriteMeta persists the source's metadata blob, compressed per the
	// writer's configured output compression.
	WriteMeta(ctx context.Context, meta Blob) error
	// WriteTile persists a single tile, already recompressed to the
	// writer's configured output format/compression.
	WriteTile(ctx context.Context, coord TileCoord3, data Blob) error
	// Close flushes and releases any backing resources.
	Close() error
}
