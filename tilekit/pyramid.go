package tilekit

// PyramidLevels is the number of zoom levels a TileBBoxPyramid holds,
// indexed 0..32 inclusive. See spec.md section 3.
const PyramidLevels = 33

// TileBBoxPyramid is an ordered sequence of PyramidLevels TileBBox values,
// one per zoom level. See spec.md section 3 ("TileBBoxPyramide").
type TileBBoxPyramid struct {
	levels [PyramidLevels]TileBBox
}

// NewFullPyramid returns a pyramid where every level covers its whole zoom.
func NewFullPyramid() TileBBoxPyramid {
	var p TileBBoxPyramid
	for z := 0; z < PyramidLevels; z++ {
		p.levels[z] = NewFullBBox(uint8(z))
	}
	return p
}

// NewEmptyPyramid returns a pyramid with every level empty.
func NewEmptyPyramid() TileBBoxPyramid {
	var p TileBBoxPyramid
	for z := 0; z < PyramidLevels; z++ {
		p.levels[z] = NewEmptyBBox(uint8(z))
	}
	return p
}

// SetZoomMin empties every level below zMin.
func (p *TileBBoxPyramid) SetZoomMin(zMin uint8) {
	for z := 0; z < int(zMin) && z < PyramidLevels; z++ {
		p.levels[z] = NewEmptyBBox(uint8(z))
	}
}

// SetZoomMax empties every level above zMax.
func (p *TileBBoxPyramid) SetZoomMax(zMax uint8) {
	for z := int(zMax) + 1; z < PyramidLevels; z++ {
		p.levels[z] = NewEmptyBBox(uint8(z))
	}
}

// LimitByGeoBBox intersects every level with the tile-space projection of a
// WGS84 degrees bounding box [west, south, east, north].
func (p *TileBBoxPyramid) LimitByGeoBBox(west, south, east, north float64) {
	for z := 0; z < PyramidLevels; z++ {
		p.levels[z] = p.levels[z].Intersect(FromGeo(uint8(z), west, south, east, north))
	}
}

// Intersect intersects every level of p with the matching level of o,
// in place.
func (p *TileBBoxPyramid) Intersect(o TileBBoxPyramid) {
	for z := 0; z < PyramidLevels; z++ {
		p.levels[z] = p.levels[z].Intersect(o.levels[z])
	}
}

// IncludeBBoxPyramid unions every level of o into p, in place.
func (p *TileBBoxPyramid) IncludeBBoxPyramid(o TileBBoxPyramid) {
	for z := 0; z < PyramidLevels; z++ {
		p.levels[z] = p.levels[z].Union(o.levels[z])
	}
}

// GetLevelBBox returns the bbox at the given zoom level.
func (p TileBBoxPyramid) GetLevelBBox(z uint8) TileBBox {
	return p.levels[z]
}

// SetLevelBBox replaces the bbox at the given zoom level.
func (p *TileBBoxPyramid) SetLevelBBox(z uint8, b TileBBox) {
	p.levels[z] = b
}

// IncludeTile grows the bbox at level z to include (x, y).
func (p *TileBBoxPyramid) IncludeTile(z uint8, x, y uint32) {
	p.levels[z] = p.levels[z].IncludeTile(x, y)
}

// IterLevels returns every level's bbox, in ascending zoom order, including
// empty ones.
func (p TileBBoxPyramid) IterLevels() []TileBBox {
	out := make([]TileBBox, PyramidLevels)
	copy(out, p.levels[:])
	return out
}

// IterTileIndexes flattens the pyramid into every covered coordinate,
// ascending z then row-major within each level.
func (p TileBBoxPyramid) IterTileIndexes() []TileCoord3 {
	var coords []TileCoord3
	for z := 0; z < PyramidLevels; z++ {
		coords = append(coords, p.levels[z].IterCoords()...)
	}
	return coords
}

// GetZoomRange returns the min and max non-empty level, or (0, 0) if every
// level is empty. See spec.md section 3.
func (p TileBBoxPyramid) GetZoomRange() (min, max uint8) {
	first := -1
	last := -1
	for z := 0; z < PyramidLevels; z++ {
		if !p.levels[z].IsEmpty() {
			if first == -1 {
				first = z
			}
			last = z
		}
	}
	if first == -1 {
		return 0, 0
	}
	return uint8(first), uint8(last)
}

// CountTiles returns the total number of tiles covered across all levels.
func (p TileBBoxPyramid) CountTiles() uint64 {
	var total uint64
	for z := 0; z < PyramidLevels; z++ {
		total += p.levels[z].Count()
	}
	return total
}
