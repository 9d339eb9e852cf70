package tilekit

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoomLevel bounds the zoom levels a pyramid can address. See spec.md
// section 3 ("z <= 31") and section 4.1 (33 levels, index 0..32, so a
// pyramid can represent "no tiles above level 32" as an empty level).
const MaxZoomLevel = 31

// TileCoord3 addresses a single tile. Immutable after construction.
type TileCoord3 struct {
	Z uint8
	X uint32
	Y uint32
}

// NewTileCoord3 validates 0 <= x,y < 2^z and z <= MaxZoomLevel.
func NewTileCoord3(z uint8, x, y uint32) (TileCoord3, error) {
	if z > MaxZoomLevel {
		return TileCoord3{}, fmt.Errorf("tilekit: zoom %d exceeds max zoom %d", z, MaxZoomLevel)
	}
	n := uint32(1) << z
	if x >= n || y >= n {
		return TileCoord3{}, fmt.Errorf("tilekit: coord (%d,%d) out of range for zoom %d", x, y, z)
	}
	return TileCoord3{Z: z, X: x, Y: y}, nil
}

// Maptile converts to the paulmach/orb tile type.
func (c TileCoord3) Maptile() maptile.Tile {
	return maptile.Tile{Z: maptile.Zoom(c.Z), X: uint32(c.X), Y: uint32(c.Y)}
}

// TileCoord3FromMaptile converts back from the orb tile type.
func TileCoord3FromMaptile(t maptile.Tile) TileCoord3 {
	return TileCoord3{Z: uint8(t.Z), X: t.X, Y: t.Y}
}

// TileBBox is an inclusive rectangle [XMin..XMax] x [YMin..YMax] at a fixed
// zoom level, or the empty set. See spec.md section 3.
type TileBBox struct {
	Z            uint8
	XMin, XMax   uint32
	YMin, YMax   uint32
	empty        bool
}

// NewEmptyBBox returns the empty bbox at the given zoom.
func NewEmptyBBox(z uint8) TileBBox {
	return TileBBox{Z: z, empty: true}
}

// NewFullBBox returns the bbox covering the entire zoom level.
func NewFullBBox(z uint8) TileBBox {
	n := maxIndex(z)
	return TileBBox{Z: z, XMin: 0, XMax: n, YMin: 0, YMax: n}
}

// NewBBox builds a bbox from inclusive bounds, clamping to [0, 2^z-1] per
// spec.md section 4.1. An inverted range (min > max after clamping) yields
// the empty bbox.
func NewBBox(z uint8, xMin, xMax, yMin, yMax uint32) TileBBox {
	n := maxIndex(z)
	xMin, xMax = clamp(xMin, n), clamp(xMax, n)
	yMin, yMax = clamp(yMin, n), clamp(yMax, n)
	if xMin > xMax || yMin > yMax {
		return NewEmptyBBox(z)
	}
	return TileBBox{Z: z, XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}

func maxIndex(z uint8) uint32 {
	return uint32(1)<<z - 1
}

func clamp(v, max uint32) uint32 {
	if v > max {
		return max
	}
	return v
}

// IsEmpty reports whether the bbox contains no tiles.
func (b TileBBox) IsEmpty() bool {
	return b.empty
}

// Width returns the number of columns covered, 0 if empty.
func (b TileBBox) Width() uint32 {
	if b.empty {
		return 0
	}
	return b.XMax - b.XMin + 1
}

// Height returns the number of rows covered, 0 if empty.
func (b TileBBox) Height() uint32 {
	if b.empty {
		return 0
	}
	return b.YMax - b.YMin + 1
}

// Count returns the number of tiles covered.
func (b TileBBox) Count() uint64 {
	return uint64(b.Width()) * uint64(b.Height())
}

// IncludeTile grows the bbox, if necessary, to include the given tile.
func (b TileBBox) IncludeTile(x, y uint32) TileBBox {
	if b.empty {
		return TileBBox{Z: b.Z, XMin: x, XMax: x, YMin: y, YMax: y}
	}
	return TileBBox{
		Z:    b.Z,
		XMin: min32(b.XMin, x), XMax: max32(b.XMax, x),
		YMin: min32(b.YMin, y), YMax: max32(b.YMax, y),
	}
}

// Intersect returns the overlap of two bboxes at the same zoom level.
func (b TileBBox) Intersect(o TileBBox) TileBBox {
	if b.empty || o.empty || b.Z != o.Z {
		return NewEmptyBBox(b.Z)
	}
	return NewBBox(b.Z, max32(b.XMin, o.XMin), min32(b.XMax, o.XMax), max32(b.YMin, o.YMin), min32(b.YMax, o.YMax))
}

// Union returns the bounding box of both bboxes at the same zoom level.
func (b TileBBox) Union(o TileBBox) TileBBox {
	if b.empty {
		return o
	}
	if o.empty {
		return b
	}
	return NewBBox(b.Z, min32(b.XMin, o.XMin), max32(b.XMax, o.XMax), min32(b.YMin, o.YMin), max32(b.YMax, o.YMax))
}

// Contains reports whether c falls inside the bbox.
func (b TileBBox) Contains(c TileCoord3) bool {
	if b.empty || c.Z != b.Z {
		return false
	}
	return c.X >= b.XMin && c.X <= b.XMax && c.Y >= b.YMin && c.Y <= b.YMax
}

// IterCoords iterates every tile in the bbox in row-major order (y ascending
// outer, x ascending inner).
func (b TileBBox) IterCoords() []TileCoord3 {
	if b.empty {
		return nil
	}
	coords := make([]TileCoord3, 0, b.Count())
	for y := b.YMin; y <= b.YMax; y++ {
		for x := b.XMin; x <= b.XMax; x++ {
			coords = append(coords, TileCoord3{Z: b.Z, X: x, Y: y})
			if x == maxIndex(b.Z) {
				break
			}
		}
		if y == maxIndex(b.Z) {
			break
		}
	}
	return coords
}

// GetTileIndex3 returns the dense row-major index of c within the bbox, as
// used by the overlay operation to deduplicate results by position. Callers
// must ensure b.Contains(c).
func (b TileBBox) GetTileIndex3(c TileCoord3) int {
	return int(c.Y-b.YMin)*int(b.Width()) + int(c.X-b.XMin)
}

// IterBBoxGrid partitions a non-empty bbox into at most ceil(w/n)*ceil(h/n)
// axis-aligned sub-bboxes, the streaming chunk size from spec.md section
// 4.1. Returns nil for an empty bbox.
func (b TileBBox) IterBBoxGrid(n uint32) []TileBBox {
	if b.empty || n == 0 {
		return nil
	}
	var chunks []TileBBox
	for y := b.YMin; y <= b.YMax; y += n {
		yEnd := y + n - 1
		if yEnd > b.YMax {
			yEnd = b.YMax
		}
		for x := b.XMin; x <= b.XMax; x += n {
			xEnd := x + n - 1
			if xEnd > b.XMax {
				xEnd = b.XMax
			}
			chunks = append(chunks, TileBBox{Z: b.Z, XMin: x, XMax: xEnd, YMin: y, YMax: yEnd})
			if xEnd == b.XMax {
				break
			}
		}
		if yEnd == b.YMax {
			break
		}
	}
	return chunks
}

// FromGeo converts a WGS84 degrees bounding box [west, south, east, north]
// into tile space at zoom z via spherical-Mercator quantization, per
// spec.md section 4.1.
func FromGeo(z uint8, west, south, east, north float64) TileBBox {
	xMin, yMax := lonLatToTile(z, west, south)
	xMax, yMin := lonLatToTile(z, east, north)
	if xMin > xMax || yMin > yMax {
		return NewEmptyBBox(z)
	}
	return NewBBox(z, xMin, xMax, yMin, yMax)
}

func lonLatToTile(z uint8, lon, lat float64) (uint32, uint32) {
	n := math.Exp2(float64(z))
	x := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return clampFloat(x, n), clampFloat(y, n)
}

func clampFloat(v, n float64) uint32 {
	if v < 0 {
		return 0
	}
	max := uint32(n) - 1
	iv := uint32(math.Floor(v))
	if iv > max {
		return max
	}
	return iv
}

// Bound converts the bbox to an orb.Bound in WGS84 degrees, for interop
// with paulmach/orb consumers.
func (b TileBBox) Bound() orb.Bound {
	if b.empty {
		return orb.Bound{}
	}
	return maptile.Tile{Z: maptile.Zoom(b.Z), X: b.XMin, Y: b.YMax}.Bound().Union(
		maptile.Tile{Z: maptile.Zoom(b.Z), X: b.XMax, Y: b.YMin}.Bound(),
	)
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
