// Command tilekit-merge combines several mbtiles files into one, expressed
// as an overlay_tiles pipeline over N read operations: overlay's
// first-wins precedence over declaration order already gives
// earlier-input-wins merge semantics.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/tile-kit/tilekit/convert"
	"github.com/tile-kit/tilekit/mbtiles"
	"github.com/tile-kit/tilekit/pipeline"
	"github.com/tile-kit/tilekit/vdl"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func main() {
	outputFilename := flag.String("output", "", "The output mbtiles to write to.")
	batchSize := flag.Int("batch-size", 1000, "SQLite commit batch size.")
	flag.Parse()
	inputFilenames := flag.Args()

	if *outputFilename == "" {
		log.Fatalf("Must specify -output path")
	}
	if len(inputFilenames) == 0 {
		log.Fatalf("Must specify at least one input path")
	}
	if pathExists(*outputFilename) {
		log.Fatalf("Output path %s already exists and cannot be overwritten", *outputFilename)
	}

	children := make([]vdl.Pipeline, len(inputFilenames))
	for i, filename := range inputFilenames {
		children[i] = vdl.Pipeline{
			Nodes: []vdl.Node{{
				Name:       "read",
				Properties: map[string][]string{"filename": {filename}},
			}},
		}
	}
	mergedPipeline := vdl.Pipeline{
		Nodes: []vdl.Node{{
			Name:     "overlay_tiles",
			Children: children,
		}},
	}

	factory := pipeline.NewFactory(".")
	mbtiles.RegisterRead(factory)
	pipeline.RegisterOverlay(factory)

	ctx := context.Background()
	reader, err := factory.BuildPipeline(ctx, mergedPipeline)
	if err != nil {
		log.Fatalf("Couldn't build merge pipeline: %+v", err)
	}

	log.Printf("Merging %d inputs into %s", len(inputFilenames), *outputFilename)

	writer, err := mbtiles.Create(*outputFilename, *batchSize)
	if err != nil {
		log.Fatalf("Couldn't create output mbtiles: %+v", err)
	}

	params := reader.Parameters()
	if err := convert.Run(ctx, reader, writer, convert.Options{
		DstFormat:      params.Format,
		DstCompression: params.Compression,
	}); err != nil {
		log.Fatalf("Merge failed: %+v", err)
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("Error closing output: %+v", err)
	}

	log.Print("Merge complete")
}
