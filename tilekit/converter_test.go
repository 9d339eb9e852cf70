package tilekit

import (
	"bytes"
	"testing"
)

func TestTileRecompressorIdentity(t *testing.T) {
	conv, err := NewTileRecompressor(FormatPBF, CompressionGzip, FormatPBF, CompressionGzip, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	x := NewBlob([]byte{0xAA, 0xBB, 0xCC})
	got, err := conv.Run(x)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), x.Bytes()) {
		t.Fatal("identity recompressor must not modify the blob")
	}
}

func TestTileRecompressorRecompresses(t *testing.T) {
	original := NewBlob([]byte("vector tile payload"))
	gz, err := Compress(original, CompressionGzip)
	if err != nil {
		t.Fatal(err)
	}
	conv, err := NewTileRecompressor(FormatPBF, CompressionGzip, FormatPBF, CompressionBrotli, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	br, err := conv.Run(gz)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decompress(br, CompressionBrotli)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back.Bytes(), original.Bytes()) {
		t.Fatal("recompressor output did not round trip")
	}
}

func TestTileRecompressorUnsupportedConversion(t *testing.T) {
	_, err := NewTileRecompressor(FormatPNG, CompressionNone, FormatPBF, CompressionNone, false, nil)
	if err == nil {
		t.Fatal("expected ErrUnsupportedFormatConversion")
	}
	if _, ok := err.(ErrUnsupportedFormatConversion); !ok {
		t.Fatalf("expected ErrUnsupportedFormatConversion, got %T: %v", err, err)
	}
}

type stubCodec struct{}

func (stubCodec) Convert(b Blob, src, dst TileFormat) (Blob, error) {
	return NewBlob(append([]byte(nil), b.Bytes()...)), nil
}

func TestTileRecompressorRasterConversion(t *testing.T) {
	conv, err := NewTileRecompressor(FormatPNG, CompressionNone, FormatWEBP, CompressionNone, false, stubCodec{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := conv.Run(NewBlob([]byte{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected stub codec passthrough, got %v", got.Bytes())
	}
}
