// Package mbtiles adapts the SQLite-backed MBTiles container to tilekit's
// Reader/Writer contract.
package mbtiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 database/sql driver

	"github.com/tile-kit/tilekit/tilekit"
)

// Reader reads tiles from an MBTiles (SQLite) archive. MBTiles stores rows
// in TMS tile_row order (y counted from the bottom); tilekit.TileCoord3 uses
// XYZ order (y counted from the top), so every row access flips y.
type Reader struct {
	db     *sql.DB
	name   string
	params tilekit.TilesReaderParameters
}

// Open opens the MBTiles file at path and loads its parameters.
func Open(path string) (*Reader, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("mbtiles: open %q: %w", path, err)
	}
	r := &Reader{db: db, name: path}
	if err := r.loadParameters(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) loadParameters() error {
	format := tilekit.FormatPBF
	if v, ok := r.metadataValue("format"); ok {
		if f, err := tilekit.ParseTileFormat(v); err == nil {
			format = f
		}
	}
	// PBF tiles in MBTiles archives are conventionally gzip-compressed on
	// disk; raster formats are stored uncompressed (the image codec is
	// itself the compression).
	compression := tilekit.CompressionNone
	if format == tilekit.FormatPBF {
		compression = tilekit.CompressionGzip
	}

	pyramid := tilekit.NewEmptyPyramid()
	rows, err := r.db.Query(`
		SELECT zoom_level, MIN(tile_column), MAX(tile_column), MIN(tile_row), MAX(tile_row)
		FROM tiles GROUP BY zoom_level`)
	if err != nil {
		return fmt.Errorf("mbtiles: loading zoom levels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var z, xMin, xMax, yMinTMS, yMaxTMS int
		if err := rows.Scan(&z, &xMin, &xMax, &yMinTMS, &yMaxTMS); err != nil {
			return fmt.Errorf("mbtiles: scanning zoom levels: %w", err)
		}
		if z < 0 || z > tilekit.MaxZoomLevel {
			continue
		}
		n := uint32(1) << uint(z)
		yMin := n - 1 - uint32(yMaxTMS)
		yMax := n - 1 - uint32(yMinTMS)
		pyramid.SetLevelBBox(uint8(z), tilekit.NewBBox(uint8(z), uint32(xMin), uint32(xMax), yMin, yMax))
	}

	r.params = tilekit.TilesReaderParameters{
		Format:      format,
		Compression: compression,
		Pyramid:     pyramid,
	}
	return nil
}

func (r *Reader) metadataValue(name string) (string, bool) {
	row := r.db.QueryRow("SELECT value FROM metadata WHERE name = ? LIMIT 1", name)
	var value string
	if err := row.Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

func (r *Reader) ContainerName() string { return "mbtiles" }
func (r *Reader) Name() string          { return r.name }

func (r *Reader) Parameters() tilekit.TilesReaderParameters { return r.params }

// Meta returns the metadata table as a JSON object, matching the wire shape
// the directory writer's tiles.json uses.
func (r *Reader) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return tilekit.Blob{}, false, fmt.Errorf("mbtiles: reading metadata: %w", err)
	}
	defer rows.Close()

	meta := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return tilekit.Blob{}, false, fmt.Errorf("mbtiles: scanning metadata: %w", err)
		}
		meta[name] = value
	}
	if len(meta) == 0 {
		return tilekit.Blob{}, false, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return tilekit.Blob{}, false, fmt.Errorf("mbtiles: marshaling metadata: %w", err)
	}
	return tilekit.NewBlob(data), true, nil
}

// TileData returns the tile at coord, or (Blob{}, false, nil) if absent.
func (r *Reader) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	n := uint32(1) << coord.Z
	tmsY := n - 1 - coord.Y

	row := r.db.QueryRowContext(ctx,
		"SELECT tile_data FROM tiles WHERE zoom_level=? AND tile_column=? AND tile_row=? LIMIT 1",
		coord.Z, coord.X, tmsY)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tilekit.Blob{}, false, nil
		}
		return tilekit.Blob{}, false, fmt.Errorf("mbtiles: tile %v: %w", coord, err)
	}
	return tilekit.NewBlob(data), true, nil
}

// BBoxTileStream streams every tile within bbox. Per-tile read errors are
// logged and the tile is dropped, per spec.md's streaming error policy.
func (r *Reader) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	coords := bbox.IterCoords()
	return tilekit.FromCoordVecSync(ctx, coords, func(c tilekit.TileCoord3) (tilekit.Blob, bool) {
		blob, ok, err := r.TileData(ctx, c)
		if err != nil {
			log.Printf("mbtiles: %s: %v", r.name, err)
			return tilekit.Blob{}, false
		}
		return blob, ok
	})
}

// OverrideCompression lets a standalone (non-pipeline) reader force its
// declared wire compression, e.g. when the metadata table omits "format"
// and the caller knows better.
func (r *Reader) OverrideCompression(c tilekit.TileCompression) error {
	r.params.Compression = c
	return nil
}

// Close releases the underlying database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}
