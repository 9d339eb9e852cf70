package pipeline

import (
	"context"
	"testing"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

func TestOverlayFirstWinsPrecedence(t *testing.T) {
	c00, _ := tilekit.NewTileCoord3(2, 0, 0)
	c10, _ := tilekit.NewTileCoord3(2, 1, 0)

	first := newStubOperation("first", tilekit.FormatPNG, tilekit.CompressionNone)
	first.put(c00, tilekit.NewBlob([]byte("first-wins")))

	second := newStubOperation("second", tilekit.FormatPNG, tilekit.CompressionNone)
	second.put(c00, tilekit.NewBlob([]byte("should-be-shadowed")))
	second.put(c10, tilekit.NewBlob([]byte("only-in-second")))

	op, err := buildOverlay(context.Background(), ".", vdl.Node{Name: "overlay_tiles"}, []Operation{first, second})
	if err != nil {
		t.Fatal(err)
	}

	blob, ok, err := op.TileData(context.Background(), c00)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || blob.String() != "first-wins" {
		t.Fatalf("expected first.String()==first-wins, got ok=%v body=%q", ok, blob.String())
	}

	blob, ok, err = op.TileData(context.Background(), c10)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || blob.String() != "only-in-second" {
		t.Fatalf("expected fallthrough to second child, got ok=%v body=%q", ok, blob.String())
	}
}

func TestOverlayRejectsMismatchedFormats(t *testing.T) {
	a := newStubOperation("a", tilekit.FormatPNG, tilekit.CompressionNone)
	b := newStubOperation("b", tilekit.FormatPBF, tilekit.CompressionNone)

	_, err := buildOverlay(context.Background(), ".", vdl.Node{Name: "overlay_tiles"}, []Operation{a, b})
	if err == nil {
		t.Fatal("expected an error for mismatched child tile_format")
	}
}

func TestOverlayStreamsAcrossChunks(t *testing.T) {
	first := newStubOperation("first", tilekit.FormatPNG, tilekit.CompressionNone)
	second := newStubOperation("second", tilekit.FormatPNG, tilekit.CompressionNone)

	// 260 columns at chunk size 256 span two grid chunks.
	var coords []tilekit.TileCoord3
	for x := uint32(0); x < 260; x++ {
		for y := uint32(0); y < 2; y++ {
			c, _ := tilekit.NewTileCoord3(9, x, y)
			coords = append(coords, c)
			first.put(c, tilekit.NewBlob([]byte("tile")))
		}
	}

	op, err := buildOverlay(context.Background(), ".", vdl.Node{Name: "overlay_tiles"}, []Operation{first, second})
	if err != nil {
		t.Fatal(err)
	}

	bbox := tilekit.NewBBox(9, 0, 259, 0, 1)
	entries, err := op.BBoxTileStream(context.Background(), bbox).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(coords) {
		t.Fatalf("expected %d tiles, got %d", len(coords), len(entries))
	}
}
