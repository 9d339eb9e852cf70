// Package httptiles serves tilekit Readers over HTTP, with Accept-Encoding
// compression negotiation.
package httptiles

import (
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/tile-kit/tilekit/tilekit"
)

// TileContainer wraps a Reader and routes requests under mount. Path
// segments after mount are [z, y, x[.ext]] for tiles, or "meta.json".
type TileContainer struct {
	mount  string
	reader tilekit.Reader
}

// NewTileContainer returns a TileContainer serving reader's tiles under
// mount (leading/trailing slashes are normalized).
func NewTileContainer(mount string, reader tilekit.Reader) *TileContainer {
	mount = "/" + strings.Trim(mount, "/")
	return &TileContainer{mount: mount, reader: reader}
}

// Mount returns the container's URL mount prefix.
func (c *TileContainer) Mount() string { return c.mount }

// Handler returns an http.Handler serving this container's routes.
func (c *TileContainer) Handler() http.Handler {
	return http.HandlerFunc(c.serveHTTP)
}

func (c *TileContainer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, c.mount)
	rest = strings.Trim(rest, "/")
	if rest == "meta.json" {
		c.serveMeta(w, r)
		return
	}

	segments := strings.Split(rest, "/")
	if len(segments) != 3 {
		http.NotFound(w, r)
		return
	}
	c.serveTile(w, r, segments)
}

func (c *TileContainer) serveTile(w http.ResponseWriter, r *http.Request, segments []string) {
	zStr, yStr, xWithExt := segments[0], segments[1], segments[2]
	ext := path.Ext(xWithExt)
	xStr := strings.TrimSuffix(xWithExt, ext)

	z, errZ := strconv.ParseUint(zStr, 10, 8)
	y, errY := strconv.ParseUint(yStr, 10, 32)
	x, errX := strconv.ParseUint(xStr, 10, 32)
	if errZ != nil || errY != nil || errX != nil {
		http.NotFound(w, r)
		return
	}
	coord, err := tilekit.NewTileCoord3(uint8(z), uint32(x), uint32(y))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	blob, ok, err := c.reader.TileData(r.Context(), coord)
	if err != nil {
		log.Printf("httptiles: tile %v: %v", coord, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	params := c.reader.Parameters()
	w.Header().Set("Content-Type", params.Format.MimeType())

	if acceptsEncoding(r.Header.Get("Accept-Encoding"), params.Compression) {
		if ce := params.Compression.ContentEncoding(); ce != "" {
			w.Header().Set("Content-Encoding", ce)
		}
		w.Write(blob.Bytes())
		return
	}

	raw, err := tilekit.Decompress(blob, params.Compression)
	if err != nil {
		log.Printf("httptiles: decompressing tile %v: %v", coord, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Write(raw.Bytes())
}

func (c *TileContainer) serveMeta(w http.ResponseWriter, r *http.Request) {
	meta, ok, err := c.reader.Meta(r.Context())
	if err != nil {
		log.Printf("httptiles: meta: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	enc := bestAcceptedEncoding(r.Header.Get("Accept-Encoding"))
	out, err := tilekit.Compress(meta, enc)
	if err != nil {
		log.Printf("httptiles: compressing meta: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ce := enc.ContentEncoding(); ce != "" {
		w.Header().Set("Content-Encoding", ce)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out.Bytes())
}

// acceptsEncoding reports whether acceptEncoding names c's wire encoding.
// An uncompressed payload is always acceptable.
func acceptsEncoding(acceptEncoding string, c tilekit.TileCompression) bool {
	enc := c.ContentEncoding()
	if enc == "" {
		return true
	}
	for _, part := range strings.Split(acceptEncoding, ",") {
		name := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if name == enc {
			return true
		}
	}
	return false
}

// bestAcceptedEncoding picks the best of brotli, gzip, or none that
// acceptEncoding allows.
func bestAcceptedEncoding(acceptEncoding string) tilekit.TileCompression {
	switch {
	case acceptsEncoding(acceptEncoding, tilekit.CompressionBrotli):
		return tilekit.CompressionBrotli
	case acceptsEncoding(acceptEncoding, tilekit.CompressionGzip):
		return tilekit.CompressionGzip
	default:
		return tilekit.CompressionNone
	}
}
