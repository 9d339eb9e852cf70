package tilekit

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// Compress encodes a blob with the given wire compression. CompressionNone
// returns the blob unchanged.
func Compress(b Blob, c TileCompression) (Blob, error) {
	switch c {
	case CompressionNone:
		return b, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(b.Bytes()); err != nil {
			return Blob{}, fmt.Errorf("tilekit: gzip compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return Blob{}, fmt.Errorf("tilekit: gzip compress: %w", err)
		}
		return NewBlob(buf.Bytes()), nil
	case CompressionBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(b.Bytes()); err != nil {
			return Blob{}, fmt.Errorf("tilekit: brotli compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return Blob{}, fmt.Errorf("tilekit: brotli compress: %w", err)
		}
		return NewBlob(buf.Bytes()), nil
	default:
		return Blob{}, fmt.Errorf("tilekit: unknown compression %v", c)
	}
}

// Decompress decodes a blob that was compressed with the given wire
// compression. CompressionNone returns the blob unchanged.
func Decompress(b Blob, c TileCompression) (Blob, error) {
	switch c {
	case CompressionNone:
		return b, nil
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(b.Bytes()))
		if err != nil {
			return Blob{}, fmt.Errorf("tilekit: gzip decompress: %w", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return Blob{}, fmt.Errorf("tilekit: gzip decompress: %w", err)
		}
		return NewBlob(data), nil
	case CompressionBrotli:
		r := brotli.NewReader(bytes.NewReader(b.Bytes()))
		data, err := io.ReadAll(r)
		if err != nil {
			return Blob{}, fmt.Errorf("tilekit: brotli decompress: %w", err)
		}
		return NewBlob(data), nil
	default:
		return Blob{}, fmt.Errorf("tilekit: unknown compression %v", c)
	}
}

// Recompress decompresses a blob from src and recompresses it to dst,
// short-circuiting when src == dst.
func Recompress(b Blob, src, dst TileCompression) (Blob, error) {
	if src == dst {
		return b, nil
	}
	raw, err := Decompress(b, src)
	if err != nil {
		return Blob{}, err
	}
	return Compress(raw, dst)
}
