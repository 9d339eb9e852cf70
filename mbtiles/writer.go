package mbtiles

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tile-kit/tilekit/tilekit"
)

// Writer writes tiles to a new or existing MBTiles (SQLite) archive,
// batching writes into transactions. Grounded on
// tilepack/mbtiles_outputter.go.
type Writer struct {
	db         *sql.DB
	txn        *sql.Tx
	hasSchema  bool
	batchSize  int
	batchCount int
}

// Create opens (or creates) the MBTiles file at path for writing, batching
// batchSize tiles per transaction.
func Create(path string, batchSize int) (*Writer, error) {
	if batchSize <= 0 {
		batchSize = 1
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("mbtiles: create %q: %w", path, err)
	}
	return &Writer{db: db, batchSize: batchSize}, nil
}

func (w *Writer) createSchema(ctx context.Context) error {
	if w.hasSchema {
		return nil
	}
	if _, err := w.db.ExecContext(ctx, `
		BEGIN TRANSACTION;
		CREATE TABLE IF NOT EXISTS map (
			zoom_level INTEGER NOT NULL,
			tile_column INTEGER NOT NULL,
			tile_row INTEGER NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);
		CREATE TABLE IF NOT EXISTS images (
			tile_data BLOB NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT
		);
		CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);
		CREATE VIEW IF NOT EXISTS tiles AS
		SELECT
			map.zoom_level AS zoom_level,
			map.tile_column AS tile_column,
			map.tile_row AS tile_row,
			images.tile_data AS tile_data
		FROM map
		JOIN images ON images.tile_id = map.tile_id;
		COMMIT;
		PRAGMA synchronous=OFF;
	`); err != nil {
		return fmt.Errorf("mbtiles: creating schema: %w", err)
	}
	w.hasSchema = true
	return nil
}

// WriteMeta persists a JSON object of metadata key/value pairs, the same
// shape Reader.Meta produces.
func (w *Writer) WriteMeta(ctx context.Context, meta tilekit.Blob) error {
	if err := w.createSchema(ctx); err != nil {
		return err
	}
	var kv map[string]string
	if err := json.Unmarshal(meta.Bytes(), &kv); err != nil {
		return fmt.Errorf("mbtiles: decoding metadata: %w", err)
	}
	for name, value := range kv {
		if _, err := w.db.ExecContext(ctx, "INSERT OR REPLACE INTO metadata (name, value) VALUES(?, ?)", name, value); err != nil {
			return fmt.Errorf("mbtiles: writing metadata key %s: %w", name, err)
		}
	}
	return nil
}

// WriteTile persists a single tile, deduplicating identical payloads by
// MD5 content hash.
func (w *Writer) WriteTile(ctx context.Context, coord tilekit.TileCoord3, data tilekit.Blob) error {
	if err := w.createSchema(ctx); err != nil {
		return err
	}
	if w.txn == nil {
		tx, err := w.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("mbtiles: starting transaction: %w", err)
		}
		w.txn = tx
	}

	hash := md5.Sum(data.Bytes())
	tileID := hex.EncodeToString(hash[:])
	n := uint32(1) << coord.Z
	tmsY := n - 1 - coord.Y

	if _, err := w.txn.ExecContext(ctx, "INSERT OR REPLACE INTO images (tile_id, tile_data) VALUES (?, ?)", tileID, data.Bytes()); err != nil {
		return fmt.Errorf("mbtiles: writing tile %v: %w", coord, err)
	}
	if _, err := w.txn.ExecContext(ctx, "INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?)", coord.Z, coord.X, tmsY, tileID); err != nil {
		return fmt.Errorf("mbtiles: writing tile %v: %w", coord, err)
	}

	w.batchCount++
	if w.batchCount%w.batchSize == 0 {
		if err := w.txn.Commit(); err != nil {
			return fmt.Errorf("mbtiles: committing batch: %w", err)
		}
		w.batchCount = 0
		w.txn = nil
	}
	return nil
}

// Close commits any pending transaction and releases the connection.
func (w *Writer) Close() error {
	if w.txn != nil {
		if err := w.txn.Commit(); err != nil {
			return fmt.Errorf("mbtiles: committing final batch: %w", err)
		}
		w.txn = nil
	}
	return w.db.Close()
}
