package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
	"github.com/tile-kit/tilekit/vectortile"
)

func encodedSourceTile(t *testing.T) tilekit.Blob {
	t.Helper()

	propsA := vectortile.NewGeoProperties()
	propsA.Set("feature_id", vectortile.NewGeoValueString("a"))
	propsB := vectortile.NewGeoProperties()
	propsB.Set("feature_id", vectortile.NewGeoValueString("missing-from-csv"))

	vt := &vectortile.VectorTile{Layers: map[string]*vectortile.Layer{
		"buildings": {
			Name:    "buildings",
			Version: 2,
			Extent:  4096,
			Features: []*vectortile.Feature{
				{Geometry: orb.Point{0, 0}, Properties: propsA},
				{Geometry: orb.Point{1, 1}, Properties: propsB},
			},
		},
	}}

	data, err := vt.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return tilekit.NewBlob(data)
}

func writeCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "properties.csv")
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVectorUpdateReplacesMatchedFeatureProperties(t *testing.T) {
	csvPath := writeCSV(t, "id,name,height\na,Warehouse,12\n")

	coord, _ := tilekit.NewTileCoord3(4, 0, 0)
	source := newStubOperation("src", tilekit.FormatPBF, tilekit.CompressionNone)
	source.put(coord, encodedSourceTile(t))

	node := vdl.Node{Properties: map[string][]string{
		"data_source_path":   {csvPath},
		"id_field_tiles":     {"feature_id"},
		"id_field_values":    {"id"},
		"replace_properties": {"true"},
	}}
	op, err := buildVectorUpdate(context.Background(), ".", node, source)
	if err != nil {
		t.Fatal(err)
	}

	out, ok, err := op.TileData(context.Background(), coord)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected tile")
	}

	vt, err := vectortile.Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	layer := vt.Layers["buildings"]
	if len(layer.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(layer.Features))
	}

	var sawMatched, sawDropped bool
	for _, f := range layer.Features {
		if f.Properties == nil {
			sawDropped = true
			continue
		}
		name, hasName := f.Properties.Get("name")
		if hasName && name.String() == "Warehouse" {
			sawMatched = true
			if _, hasID := f.Properties.Get("feature_id"); hasID {
				t.Fatal("replace_properties should fully overwrite, so the old feature_id key should be gone")
			}
		}
	}
	if !sawMatched {
		t.Fatal("expected the matched feature's properties to be replaced")
	}
	if !sawDropped {
		t.Fatal("expected the unmatched feature's properties to be dropped to nil")
	}
}

func TestVectorUpdateRequiresPBFSource(t *testing.T) {
	source := newStubOperation("src", tilekit.FormatPNG, tilekit.CompressionNone)
	node := vdl.Node{Properties: map[string][]string{
		"data_source_path": {"unused.csv"},
		"id_field_tiles":   {"feature_id"},
		"id_field_values":  {"id"},
	}}
	if _, err := buildVectorUpdate(context.Background(), ".", node, source); err == nil {
		t.Fatal("expected an error for a non-PBF source")
	}
}
