// Command tilekit-convert bulk-converts tiles between two containers.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/tile-kit/tilekit/convert"
	"github.com/tile-kit/tilekit/diskcontainer"
	"github.com/tile-kit/tilekit/mbtiles"
	"github.com/tile-kit/tilekit/tilekit"
)

func openReader(mode, dsn, format, compression string) (tilekit.Reader, error) {
	switch mode {
	case "mbtiles":
		return mbtiles.Open(dsn)
	case "directory":
		f, err := tilekit.ParseTileFormat(format)
		if err != nil {
			return nil, err
		}
		c, err := tilekit.ParseTileCompression(compression)
		if err != nil {
			return nil, err
		}
		return diskcontainer.Open(dsn, f, c)
	default:
		log.Fatalf("unknown mode %q (must be mbtiles or directory)", mode)
		return nil, nil
	}
}

func createWriter(mode, dsn string, format tilekit.TileFormat, compression tilekit.TileCompression, batchSize int) (tilekit.Writer, error) {
	switch mode {
	case "mbtiles":
		return mbtiles.Create(dsn, batchSize)
	case "directory":
		return diskcontainer.Create(dsn, format, compression)
	default:
		log.Fatalf("unknown mode %q (must be mbtiles or directory)", mode)
		return nil, nil
	}
}

func main() {
	srcMode := flag.String("src-mode", "mbtiles", "Source container mode: mbtiles or directory.")
	srcDSN := flag.String("src", "", "Path to the source container.")
	srcFormat := flag.String("src-format", "pbf", "Source tile format (directory mode only).")
	srcCompression := flag.String("src-compression", "none", "Source wire compression (directory mode only).")

	dstMode := flag.String("dst-mode", "mbtiles", "Destination container mode: mbtiles or directory.")
	dstDSN := flag.String("dst", "", "Path to write the destination container.")
	dstFormat := flag.String("dst-format", "pbf", "Destination tile format.")
	dstCompression := flag.String("dst-compression", "gzip", "Destination wire compression.")
	force := flag.Bool("force", false, "Force recompression even when source and destination format and compression already match.")
	batchSize := flag.Int("batch-size", 1000, "SQLite commit batch size (mbtiles destination only).")
	flag.Parse()

	if *srcDSN == "" {
		log.Fatalf("Source path (-src) is required")
	}
	if *dstDSN == "" {
		log.Fatalf("Destination path (-dst) is required")
	}

	reader, err := openReader(*srcMode, *srcDSN, *srcFormat, *srcCompression)
	if err != nil {
		log.Fatalf("Couldn't open source %s: %+v", *srcDSN, err)
	}

	dstF, err := tilekit.ParseTileFormat(*dstFormat)
	if err != nil {
		log.Fatalf("Invalid -dst-format: %+v", err)
	}
	dstC, err := tilekit.ParseTileCompression(*dstCompression)
	if err != nil {
		log.Fatalf("Invalid -dst-compression: %+v", err)
	}

	writer, err := createWriter(*dstMode, *dstDSN, dstF, dstC, *batchSize)
	if err != nil {
		log.Fatalf("Couldn't create destination %s: %+v", *dstDSN, err)
	}

	log.Printf("Converting %s (%s) -> %s (%s, %s)", *srcDSN, *srcMode, *dstDSN, *dstMode, dstF)

	opts := convert.Options{
		DstFormat:      dstF,
		DstCompression: dstC,
		Force:          *force,
	}
	if err := convert.Run(context.Background(), reader, writer, opts); err != nil {
		log.Fatalf("Conversion failed: %+v", err)
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("Error closing destination: %+v", err)
	}

	log.Print("Conversion complete")
}
