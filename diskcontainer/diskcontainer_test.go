package diskcontainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tile-kit/tilekit/tilekit"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	w, err := Create(root, tilekit.FormatPNG, tilekit.CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	coords := []tilekit.TileCoord3{
		{Z: 0, X: 0, Y: 0},
		{Z: 3, X: 7, Y: 7},
	}
	for _, c := range coords {
		if err := w.WriteTile(ctx, c, tilekit.NewBlob([]byte("dummy png bytes"))); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.WriteMeta(ctx, tilekit.BlobFromString("dummy meta data")); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(root, "0", "0", "0.png")); err != nil {
		t.Fatalf("expected 0/0/0.png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "3", "7", "7.png")); err != nil {
		t.Fatalf("expected 3/7/7.png: %v", err)
	}

	r, err := Open(root, tilekit.FormatPNG, tilekit.CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range coords {
		blob, ok, err := r.TileData(ctx, c)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("expected tile %v to be present", c)
		}
		if blob.String() != "dummy png bytes" {
			t.Fatalf("unexpected tile bytes: %q", blob.String())
		}
	}

	meta, ok, err := r.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || meta.String() != "dummy meta data" {
		t.Fatalf("unexpected metadata: ok=%v body=%q", ok, meta.String())
	}

	zMin, zMax := r.Parameters().Pyramid.GetZoomRange()
	if zMin != 0 || zMax != 3 {
		t.Fatalf("expected zoom range 0..3, got %d..%d", zMin, zMax)
	}
}

func TestMissingTileReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	if _, err := Create(root, tilekit.FormatPNG, tilekit.CompressionNone); err != nil {
		t.Fatal(err)
	}
	r, err := Open(root, tilekit.FormatPNG, tilekit.CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := r.TileData(context.Background(), tilekit.TileCoord3{Z: 5, X: 1, Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected missing tile")
	}
}
