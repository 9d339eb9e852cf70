package tilekit

import "fmt"

// ErrUnsupportedFormatConversion is returned at DataConverter build time
// (never per-tile) when no format conversion exists between two formats.
// See spec.md section 4.2.
type ErrUnsupportedFormatConversion struct {
	From, To TileFormat
}

func (e ErrUnsupportedFormatConversion) Error() string {
	return fmt.Sprintf("tilekit: unsupported format conversion %s -> %s", e.From, e.To)
}

// ImageCodec is the external collaborator that encodes and decodes raster
// tile formats. Its internals are out of scope (spec.md section 1); tilekit
// only depends on this interface. PBF and the text-based vector/JSON
// formats never reach it.
type ImageCodec interface {
	// Convert re-encodes a raster blob from src to dst. Implementations may
	// return ErrUnsupportedFormatConversion for unsupported pairs.
	Convert(b Blob, src, dst TileFormat) (Blob, error)
}

// fnConv is a pure function stage of a DataConverter pipeline.
type fnConv func(Blob) (Blob, error)

// DataConverter is an ordered list of pure functions applied left to right
// to a Blob. See spec.md section 4.2.
type DataConverter struct {
	stages []fnConv
}

// Run feeds b through every stage in order.
func (c DataConverter) Run(b Blob) (Blob, error) {
	var err error
	for _, stage := range c.stages {
		b, err = stage(b)
		if err != nil {
			return Blob{}, err
		}
	}
	return b, nil
}

// NewDecompressor returns a converter that decompresses from src.
func NewDecompressor(src TileCompression) DataConverter {
	if src == CompressionNone {
		return DataConverter{}
	}
	return DataConverter{stages: []fnConv{func(b Blob) (Blob, error) { return Decompress(b, src) }}}
}

// NewCompressor returns a converter that compresses to dst.
func NewCompressor(dst TileCompression) DataConverter {
	if dst == CompressionNone {
		return DataConverter{}
	}
	return DataConverter{stages: []fnConv{func(b Blob) (Blob, error) { return Compress(b, dst) }}}
}

// isRaster reports whether f is handled by the image codec collaborator.
func isRaster(f TileFormat) bool {
	switch f {
	case FormatPNG, FormatJPG, FormatWEBP, FormatAVIF:
		return true
	default:
		return false
	}
}

// NewTileRecompressor builds the decompress -> format-convert -> compress
// pipeline described in spec.md section 4.2. It fails fast (at build time,
// returning an error here rather than a DataConverter) when the format pair
// has no implementation.
func NewTileRecompressor(srcFormat TileFormat, srcComp TileCompression, dstFormat TileFormat, dstComp TileCompression, force bool, codec ImageCodec) (DataConverter, error) {
	if srcFormat == dstFormat && srcComp == dstComp && !force {
		return DataConverter{}, nil
	}

	needsFormatConvert := srcFormat != dstFormat || force

	var formatStage fnConv
	if needsFormatConvert {
		switch {
		case srcFormat == dstFormat:
			// force-recompress only; no actual format change needed.
		case srcFormat == FormatPBF || dstFormat == FormatPBF:
			return DataConverter{}, ErrUnsupportedFormatConversion{From: srcFormat, To: dstFormat}
		case isRaster(srcFormat) && isRaster(dstFormat):
			if codec == nil {
				return DataConverter{}, fmt.Errorf("tilekit: format conversion %s -> %s requires an ImageCodec", srcFormat, dstFormat)
			}
			formatStage = func(b Blob) (Blob, error) { return codec.Convert(b, srcFormat, dstFormat) }
		default:
			return DataConverter{}, ErrUnsupportedFormatConversion{From: srcFormat, To: dstFormat}
		}
	}

	var stages []fnConv
	if srcComp == dstComp && !force {
		if formatStage != nil {
			stages = append(stages, formatStage)
		}
	} else {
		if srcComp != CompressionNone {
			stages = append(stages, func(b Blob) (Blob, error) { return Decompress(b, srcComp) })
		}
		if formatStage != nil {
			stages = append(stages, formatStage)
		}
		if dstComp != CompressionNone {
			stages = append(stages, func(b Blob) (Blob, error) { return Compress(b, dstComp) })
		}
	}

	return DataConverter{stages: stages}, nil
}
