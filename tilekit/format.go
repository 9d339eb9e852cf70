package tilekit

import "fmt"

// TileFormat enumerates the tile payload encodings tilekit understands.
type TileFormat int

const (
	FormatUnknown TileFormat = iota
	FormatPBF
	FormatPNG
	FormatJPG
	FormatWEBP
	FormatAVIF
	FormatSVG
	FormatGeoJSON
	FormatTopoJSON
	FormatJSON
	FormatBIN
)

func (f TileFormat) String() string {
	switch f {
	case FormatPBF:
		return "pbf"
	case FormatPNG:
		return "png"
	case FormatJPG:
		return "jpg"
	case FormatWEBP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatSVG:
		return "svg"
	case FormatGeoJSON:
		return "geojson"
	case FormatTopoJSON:
		return "topojson"
	case FormatJSON:
		return "json"
	case FormatBIN:
		return "bin"
	default:
		return "unknown"
	}
}

// Extension returns the on-disk file extension, including the leading dot,
// or "" for formats with no canonical extension.
func (f TileFormat) Extension() string {
	switch f {
	case FormatPBF:
		return ".pbf"
	case FormatPNG:
		return ".png"
	case FormatJPG:
		return ".jpg"
	case FormatWEBP:
		return ".webp"
	case FormatAVIF:
		return ".avif"
	case FormatSVG:
		return ".svg"
	case FormatGeoJSON:
		return ".geojson"
	case FormatTopoJSON:
		return ".topojson"
	case FormatJSON:
		return ".json"
	case FormatBIN:
		return ".bin"
	default:
		return ""
	}
}

// MimeType implements the MIME table from spec.md section 4.9.
func (f TileFormat) MimeType() string {
	switch f {
	case FormatPBF:
		return "application/x-protobuf"
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	case FormatWEBP:
		return "image/webp"
	case FormatAVIF:
		return "image/avif"
	case FormatSVG:
		return "image/svg+xml"
	case FormatGeoJSON, FormatTopoJSON, FormatJSON:
		return "application/json"
	case FormatBIN:
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}

// ParseTileFormat parses the lowercase names produced by String(), for use
// by VDL node properties (e.g. the recompress transform's "format" arg).
func ParseTileFormat(s string) (TileFormat, error) {
	switch s {
	case "pbf":
		return FormatPBF, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "webp":
		return FormatWEBP, nil
	case "avif":
		return FormatAVIF, nil
	case "svg":
		return FormatSVG, nil
	case "geojson":
		return FormatGeoJSON, nil
	case "topojson":
		return FormatTopoJSON, nil
	case "json":
		return FormatJSON, nil
	case "bin":
		return FormatBIN, nil
	default:
		return FormatUnknown, fmt.Errorf("tilekit: unknown tile format %q", s)
	}
}

// TileCompression enumerates the wire compressions a tile payload may carry.
type TileCompression int

const (
	CompressionNone TileCompression = iota
	CompressionGzip
	CompressionBrotli
)

func (c TileCompression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBrotli:
		return "br"
	default:
		return "none"
	}
}

// Extension returns the on-disk file extension, including the leading dot,
// or "" for uncompressed tiles.
func (c TileCompression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionBrotli:
		return ".br"
	default:
		return ""
	}
}

// ContentEncoding returns the HTTP Content-Encoding header value, or "" when
// the payload should be served as identity.
func (c TileCompression) ContentEncoding() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBrotli:
		return "br"
	default:
		return ""
	}
}

// ParseTileCompression parses the lowercase names produced by String().
func ParseTileCompression(s string) (TileCompression, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "br", "brotli":
		return CompressionBrotli, nil
	default:
		return CompressionNone, fmt.Errorf("tilekit: unknown compression %q", s)
	}
}

// TilesReaderParameters describes a tile source's fixed format, wire
// compression and coverage. See spec.md section 3.
type TilesReaderParameters struct {
	Format      TileFormat
	Compression TileCompression
	Pyramid     TileBBoxPyramid
}
