// Command tilekit-serve serves a single tile container over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tile-kit/tilekit/diskcontainer"
	"github.com/tile-kit/tilekit/httptiles"
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

func main() {
	mode := flag.String("mode", "mbtiles", "Container mode: mbtiles or directory.")
	input := flag.String("input", "", "Path to the container to serve.")
	format := flag.String("format", "pbf", "Tile format (directory mode only).")
	compression := flag.String("compression", "none", "Wire compression (directory mode only).")
	mount := flag.String("mount", "/tiles", "URL prefix to mount the tiles under.")
	addr := flag.String("listen", ":8080", "The address and port to listen on.")
	flag.Parse()

	logger := log.New(os.Stdout, "http: ", log.LstdFlags)

	if *input == "" {
		logger.Fatal("Need to provide -input parameter")
	}

	reader, err := openReader(*mode, *input, *format, *compression)
	if err != nil {
		logger.Fatalf("Couldn't open %s: %+v", *input, err)
	}

	container := httptiles.NewTileContainer(*mount, reader)

	router := http.NewServeMux()
	router.Handle(container.Mount()+"/", container.Handler())
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := httptiles.NewServer(*addr, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Print("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Error during shutdown: %+v", err)
		}
	}()

	logger.Printf("Serving %s from %s at %s%s", *mode, *input, *addr, *mount)
	if err := server.ListenAndServe(); err != nil {
		logger.Fatalf("Could not listen on %s: %v", *addr, err)
	}
}
