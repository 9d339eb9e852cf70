// Package convert implements a bulk tile converter: read every tile a
// source can produce, recompress/reencode it, and write it to a
// destination container.
package convert

import (
	"context"
	"fmt"
	"log"

	"github.com/schollz/progressbar/v3"

	"github.com/tile-kit/tilekit/tilekit"
)

// Options configures the output side of a conversion run. The input side
// is fully described by the reader's own TilesReaderParameters.
type Options struct {
	DstFormat      tilekit.TileFormat
	DstCompression tilekit.TileCompression
	Force          bool
	Codec          tilekit.ImageCodec
}

// Run converts every tile reader can produce, writing it to writer via a
// recompressor built from reader's declared parameters and opts. Metadata
// is copied first if the reader has any. Per-tile recompression failures
// are logged and drop that tile; write failures are fatal.
func Run(ctx context.Context, reader tilekit.Reader, writer tilekit.Writer, opts Options) error {
	params := reader.Parameters()

	converter, err := tilekit.NewTileRecompressor(
		params.Format, params.Compression,
		opts.DstFormat, opts.DstCompression,
		opts.Force, opts.Codec)
	if err != nil {
		return fmt.Errorf("convert: building recompressor: %w", err)
	}

	if meta, ok, err := reader.Meta(ctx); err != nil {
		return fmt.Errorf("convert: reading metadata: %w", err)
	} else if ok {
		metaOut, err := tilekit.Compress(meta, opts.DstCompression)
		if err != nil {
			return fmt.Errorf("convert: compressing metadata: %w", err)
		}
		if err := writer.WriteMeta(ctx, metaOut); err != nil {
			return fmt.Errorf("convert: writing metadata: %w", err)
		}
	}

	total := params.Pyramid.CountTiles()
	bar := progressbar.Default(int64(total), "converting tiles")

	for _, bbox := range params.Pyramid.IterLevels() {
		if bbox.IsEmpty() {
			continue
		}
		if err := convertLevel(ctx, reader, writer, converter, bbox, bar); err != nil {
			return err
		}
	}
	return nil
}

func convertLevel(ctx context.Context, reader tilekit.Reader, writer tilekit.Writer, converter tilekit.DataConverter, bbox tilekit.TileBBox, bar *progressbar.ProgressBar) error {
	stream := reader.BBoxTileStream(ctx, bbox)
	defer stream.Close()

	for {
		entry, ok := stream.Next()
		if !ok {
			break
		}
		out, err := converter.Run(entry.Blob)
		if err != nil {
			log.Printf("convert: dropping tile %v: %v", entry.Coord, err)
			bar.Add(1)
			continue
		}
		if err := writer.WriteTile(ctx, entry.Coord, out); err != nil {
			return fmt.Errorf("convert: writing tile %v: %w", entry.Coord, err)
		}
		bar.Add(1)
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("convert: streaming level %d: %w", bbox.Z, err)
	}
	return nil
}
