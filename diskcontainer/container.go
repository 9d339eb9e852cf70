// Package diskcontainer implements an on-disk tile directory layout:
// "./<z>/<y>/<x><fmt_ext><comp_ext>", with metadata at
// "tiles.json<comp_ext>".
package diskcontainer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tile-kit/tilekit/tilekit"
)

func tilePath(root string, coord tilekit.TileCoord3, format tilekit.TileFormat, compression tilekit.TileCompression) string {
	return filepath.Join(root,
		strconv.Itoa(int(coord.Z)),
		strconv.Itoa(int(coord.Y)),
		strconv.Itoa(int(coord.X))+format.Extension()+compression.Extension())
}

func metaPath(root string, compression tilekit.TileCompression) string {
	return filepath.Join(root, "tiles.json"+compression.Extension())
}

// parseTileFilename splits "<x><fmt_ext><comp_ext>" back into its x value.
func parseTileFilename(name string, format tilekit.TileFormat, compression tilekit.TileCompression) (uint32, bool) {
	suffix := format.Extension() + compression.Extension()
	base := strings.TrimSuffix(name, suffix)
	if base == name && suffix != "" {
		return 0, false
	}
	x, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(x), true
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("diskcontainer: creating directory for %q: %w", path, err)
	}
	return nil
}
