package diskcontainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/tile-kit/tilekit/tilekit"
)

// Reader reads tiles from a directory laid out in the z/y/x layout.
// Format and compression are fixed at construction: a directory container
// holds exactly one of each, matching the fixed tile_format/compression
// contract every Reader publishes.
type Reader struct {
	root   string
	params tilekit.TilesReaderParameters
}

// Open scans root for the zoom levels and tile coordinates it holds under
// the given format/compression.
func Open(root string, format tilekit.TileFormat, compression tilekit.TileCompression) (*Reader, error) {
	pyramid := tilekit.NewEmptyPyramid()

	zEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("diskcontainer: reading %q: %w", root, err)
	}
	for _, zEntry := range zEntries {
		if !zEntry.IsDir() {
			continue
		}
		z, err := strconv.ParseUint(zEntry.Name(), 10, 8)
		if err != nil || z > tilekit.MaxZoomLevel {
			continue
		}
		bbox := tilekit.NewEmptyBBox(uint8(z))
		yEntries, err := os.ReadDir(root + "/" + zEntry.Name())
		if err != nil {
			continue
		}
		for _, yEntry := range yEntries {
			if !yEntry.IsDir() {
				continue
			}
			y, err := strconv.ParseUint(yEntry.Name(), 10, 32)
			if err != nil {
				continue
			}
			xEntries, err := os.ReadDir(root + "/" + zEntry.Name() + "/" + yEntry.Name())
			if err != nil {
				continue
			}
			for _, xEntry := range xEntries {
				if xEntry.IsDir() {
					continue
				}
				x, ok := parseTileFilename(xEntry.Name(), format, compression)
				if !ok {
					continue
				}
				bbox = bbox.IncludeTile(x, uint32(y))
			}
		}
		pyramid.SetLevelBBox(uint8(z), bbox)
	}

	return &Reader{
		root: root,
		params: tilekit.TilesReaderParameters{
			Format:      format,
			Compression: compression,
			Pyramid:     pyramid,
		},
	}, nil
}

func (r *Reader) ContainerName() string { return "directory" }
func (r *Reader) Name() string          { return r.root }

func (r *Reader) Parameters() tilekit.TilesReaderParameters { return r.params }

func (r *Reader) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	data, err := os.ReadFile(metaPath(r.root, r.params.Compression))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tilekit.Blob{}, false, nil
		}
		return tilekit.Blob{}, false, fmt.Errorf("diskcontainer: reading metadata: %w", err)
	}
	return tilekit.NewBlob(data), true, nil
}

func (r *Reader) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	data, err := os.ReadFile(tilePath(r.root, coord, r.params.Format, r.params.Compression))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tilekit.Blob{}, false, nil
		}
		return tilekit.Blob{}, false, fmt.Errorf("diskcontainer: tile %v: %w", coord, err)
	}
	return tilekit.NewBlob(data), true, nil
}

func (r *Reader) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	coords := bbox.IterCoords()
	return tilekit.FromCoordVecSync(ctx, coords, func(c tilekit.TileCoord3) (tilekit.Blob, bool) {
		blob, ok, err := r.TileData(ctx, c)
		if err != nil {
			log.Printf("diskcontainer: %s: %v", r.root, err)
			return tilekit.Blob{}, false
		}
		return blob, ok
	})
}

func (r *Reader) OverrideCompression(c tilekit.TileCompression) error {
	r.params.Compression = c
	return nil
}
