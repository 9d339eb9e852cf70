package httptiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tile-kit/tilekit/tilekit"
)

// stubReader serves one tile and one metadata body from memory, grounded
// on the same in-memory mock pattern used by the convert package's tests.
type stubReader struct {
	params tilekit.TilesReaderParameters
	coord  tilekit.TileCoord3
	blob   tilekit.Blob
	meta   tilekit.Blob
}

func (s *stubReader) ContainerName() string                            { return "stub" }
func (s *stubReader) Name() string                                      { return "stub" }
func (s *stubReader) Parameters() tilekit.TilesReaderParameters         { return s.params }
func (s *stubReader) OverrideCompression(tilekit.TileCompression) error { return nil }

func (s *stubReader) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	return s.meta, s.meta.Len() > 0, nil
}

func (s *stubReader) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	if coord != s.coord {
		return tilekit.Blob{}, false, nil
	}
	return s.blob, true, nil
}

func (s *stubReader) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	return tilekit.FromCoordVecSync(ctx, bbox.IterCoords(), func(c tilekit.TileCoord3) (tilekit.Blob, bool) {
		return s.TileData(ctx, c)
	})
}

func newStubReader() *stubReader {
	coord, _ := tilekit.NewTileCoord3(5, 3, 2)
	raw := tilekit.NewBlob([]byte("raw pbf bytes"))
	gz, err := tilekit.Compress(raw, tilekit.CompressionGzip)
	if err != nil {
		panic(err)
	}
	return &stubReader{
		params: tilekit.TilesReaderParameters{
			Format:      tilekit.FormatPBF,
			Compression: tilekit.CompressionGzip,
			Pyramid:     tilekit.NewEmptyPyramid(),
		},
		coord: coord,
		blob:  gz,
		meta:  tilekit.BlobFromString(`{"name":"stub"}`),
	}
}

func TestServeTileMatchingEncodingIsPassthrough(t *testing.T) {
	c := NewTileContainer("/tiles", newStubReader())
	req := httptest.NewRequest(http.MethodGet, "/tiles/5/2/3.pbf", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected Content-Encoding gzip, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-protobuf" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
}

func TestServeTileDecompressesWhenNotAccepted(t *testing.T) {
	c := NewTileContainer("/tiles", newStubReader())
	req := httptest.NewRequest(http.MethodGet, "/tiles/5/2/3.pbf", nil)
	rec := httptest.NewRecorder()

	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("expected no Content-Encoding, got %q", got)
	}
	if rec.Body.String() != "raw pbf bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestServeTileMissingReturns404(t *testing.T) {
	c := NewTileContainer("/tiles", newStubReader())
	req := httptest.NewRequest(http.MethodGet, "/tiles/5/0/0.pbf", nil)
	rec := httptest.NewRecorder()

	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServeMetaNegotiatesBestEncoding(t *testing.T) {
	c := NewTileContainer("/tiles", newStubReader())
	req := httptest.NewRequest(http.MethodGet, "/tiles/meta.json", nil)
	req.Header.Set("Accept-Encoding", "br, gzip")
	rec := httptest.NewRecorder()

	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected br, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
}
