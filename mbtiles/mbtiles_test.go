package mbtiles

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tile-kit/tilekit/tilekit"
)

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := Create(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	coord, err := tilekit.NewTileCoord3(3, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteTile(ctx, coord, tilekit.NewBlob([]byte("hello"))); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteMeta(ctx, tilekit.BlobFromString(`{"format":"pbf"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Parameters().Format != tilekit.FormatPBF {
		t.Fatalf("expected format pbf, got %s", r.Parameters().Format)
	}
	if r.Parameters().Compression != tilekit.CompressionGzip {
		t.Fatalf("expected default compression gzip for pbf, got %s", r.Parameters().Compression)
	}

	blob, ok, err := r.TileData(ctx, coord)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected tile to be present")
	}
	if blob.String() != "hello" {
		t.Fatalf("got %q", blob.String())
	}

	_, ok, err = r.TileData(ctx, tilekit.TileCoord3{Z: 3, X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no tile at (3,0,0)")
	}

	meta, ok, err := r.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || meta.Len() == 0 {
		t.Fatal("expected non-empty metadata")
	}
}

func TestPyramidDiscovery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := Create(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	coords := []tilekit.TileCoord3{
		{Z: 1, X: 0, Y: 0},
		{Z: 1, X: 1, Y: 1},
		{Z: 2, X: 3, Y: 3},
	}
	for _, c := range coords {
		if err := w.WriteTile(ctx, c, tilekit.NewBlob([]byte{1})); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	zMin, zMax := r.Parameters().Pyramid.GetZoomRange()
	if zMin != 1 || zMax != 2 {
		t.Fatalf("expected zoom range 1..2, got %d..%d", zMin, zMax)
	}
	if !r.Parameters().Pyramid.GetLevelBBox(1).Contains(tilekit.TileCoord3{Z: 1, X: 0, Y: 0}) {
		t.Fatal("expected level 1 bbox to contain (0,0)")
	}
}
