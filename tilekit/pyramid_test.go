package tilekit

import "testing"

func TestPyramidEmptyAfterClear(t *testing.T) {
	p := NewEmptyPyramid()
	min, max := p.GetZoomRange()
	if min != 0 || max != 0 {
		t.Fatalf("expected zoom range (0,0), got (%d,%d)", min, max)
	}
	if p.CountTiles() != 0 {
		t.Fatalf("expected 0 tiles, got %d", p.CountTiles())
	}
}

func TestPyramidZoomMinMax(t *testing.T) {
	p := NewFullPyramid()
	p.SetZoomMin(5)
	p.SetZoomMax(10)
	min, max := p.GetZoomRange()
	if min != 5 || max != 10 {
		t.Fatalf("expected zoom range (5,10), got (%d,%d)", min, max)
	}
}

func TestPyramidIncludeBBoxPyramidUnion(t *testing.T) {
	a := NewEmptyPyramid()
	a.SetLevelBBox(5, NewBBox(5, 0, 1, 0, 1))
	b := NewEmptyPyramid()
	b.SetLevelBBox(5, NewBBox(5, 2, 3, 2, 3))

	a.IncludeBBoxPyramid(b)
	got := a.GetLevelBBox(5)
	if got.XMin != 0 || got.XMax != 3 || got.YMin != 0 || got.YMax != 3 {
		t.Fatalf("unexpected union: %+v", got)
	}
}
