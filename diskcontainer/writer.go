package diskcontainer

import (
	"context"
	"fmt"
	"os"

	"github.com/tile-kit/tilekit/tilekit"
)

// Writer writes tiles to a directory in the on-disk z/y/x layout.
type Writer struct {
	root        string
	format      tilekit.TileFormat
	compression tilekit.TileCompression
}

// Create prepares root (creating it if needed) for writing tiles of the
// given format/compression.
func Create(root string, format tilekit.TileFormat, compression tilekit.TileCompression) (*Writer, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("diskcontainer: creating %q: %w", root, err)
	}
	return &Writer{root: root, format: format, compression: compression}, nil
}

func (w *Writer) WriteMeta(ctx context.Context, meta tilekit.Blob) error {
	path := metaPath(w.root, w.compression)
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, meta.Bytes(), 0o644); err != nil {
		return fmt.Errorf("diskcontainer: writing metadata: %w", err)
	}
	return nil
}

func (w *Writer) WriteTile(ctx context.Context, coord tilekit.TileCoord3, data tilekit.Blob) error {
	path := tilePath(w.root, coord, w.format, w.compression)
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data.Bytes(), 0o644); err != nil {
		return fmt.Errorf("diskcontainer: writing tile %v: %w", coord, err)
	}
	return nil
}

// Close is a no-op: every write is flushed synchronously.
func (w *Writer) Close() error { return nil }
