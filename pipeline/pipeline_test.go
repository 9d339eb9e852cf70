package pipeline

import (
	"context"

	"github.com/tile-kit/tilekit/tilekit"
)

// stubOperation is a minimal in-memory Operation used across this package's
// tests, grounded on the same mock-reader pattern used by convert's tests.
type stubOperation struct {
	name   string
	params tilekit.TilesReaderParameters
	tiles  map[tilekit.TileCoord3]tilekit.Blob
	meta   tilekit.Blob
}

func newStubOperation(name string, format tilekit.TileFormat, compression tilekit.TileCompression) *stubOperation {
	return &stubOperation{
		name: name,
		params: tilekit.TilesReaderParameters{
			Format:      format,
			Compression: compression,
			Pyramid:     tilekit.NewEmptyPyramid(),
		},
		tiles: map[tilekit.TileCoord3]tilekit.Blob{},
	}
}

func (s *stubOperation) put(coord tilekit.TileCoord3, blob tilekit.Blob) {
	s.tiles[coord] = blob
	s.params.Pyramid.IncludeTile(coord.Z, coord.X, coord.Y)
}

func (s *stubOperation) ContainerName() string                            { return "stub" }
func (s *stubOperation) Name() string                                     { return s.name }
func (s *stubOperation) Parameters() tilekit.TilesReaderParameters         { return s.params }
func (s *stubOperation) OverrideCompression(tilekit.TileCompression) error { return nil }

func (s *stubOperation) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	return s.meta, s.meta.Len() > 0, nil
}

func (s *stubOperation) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	b, ok := s.tiles[coord]
	return b, ok, nil
}

func (s *stubOperation) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	return tilekit.FromCoordVecSync(ctx, bbox.IterCoords(), func(c tilekit.TileCoord3) (tilekit.Blob, bool) {
		b, ok := s.tiles[c]
		return b, ok
	})
}
