package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
	"github.com/tile-kit/tilekit/vectortile"
)

// vectorUpdateOperation implements vectortiles_update_properties. See
// spec.md section 4.7.
type vectorUpdateOperation struct {
	source                Operation
	params                tilekit.TilesReaderParameters
	properties            map[string]*vectortile.GeoProperties
	idFieldTiles          string
	layerName             string
	replaceProperties     bool
	removeEmptyProperties bool
}

// RegisterVectorUpdate installs vectortiles_update_properties in f.
func RegisterVectorUpdate(f *Factory) {
	f.RegisterTransform("vectortiles_update_properties", buildVectorUpdate)
}

func buildVectorUpdate(ctx context.Context, baseDir string, node vdl.Node, source Operation) (Operation, error) {
	srcParams := source.Parameters()
	if srcParams.Format != tilekit.FormatPBF {
		return nil, fmt.Errorf("pipeline: vectortiles_update_properties requires source tile_format PBF, got %s", srcParams.Format)
	}

	dataSourcePath, err := node.RequireProp("data_source_path")
	if err != nil {
		return nil, err
	}
	idFieldTiles, err := node.RequireProp("id_field_tiles")
	if err != nil {
		return nil, err
	}
	idFieldValues, err := node.RequireProp("id_field_values")
	if err != nil {
		return nil, err
	}
	layerName, _ := node.Prop("layer_name")
	replaceProperties := propBool(node, "replace_properties", false)
	removeEmptyProperties := propBool(node, "remove_empty_properties", false)
	addID := propBool(node, "add_id", false)

	if !filepath.IsAbs(dataSourcePath) {
		dataSourcePath = filepath.Join(baseDir, dataSourcePath)
	}
	props, err := loadCSVProperties(dataSourcePath, idFieldValues, addID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: vectortiles_update_properties: %w", err)
	}

	return &vectorUpdateOperation{
		source:                source,
		params:                srcParams,
		properties:            props,
		idFieldTiles:          idFieldTiles,
		layerName:             layerName,
		replaceProperties:     replaceProperties,
		removeEmptyProperties: removeEmptyProperties,
	}, nil
}

func propBool(node vdl.Node, key string, def bool) bool {
	v, ok := node.Prop(key)
	if !ok {
		return def
	}
	return v == "true"
}

func (v *vectorUpdateOperation) ContainerName() string { return v.source.ContainerName() }
func (v *vectorUpdateOperation) Name() string           { return v.source.Name() }

func (v *vectorUpdateOperation) Parameters() tilekit.TilesReaderParameters { return v.params }

func (v *vectorUpdateOperation) Meta(ctx context.Context) (tilekit.Blob, bool, error) {
	return v.source.Meta(ctx)
}

func (v *vectorUpdateOperation) TileData(ctx context.Context, coord tilekit.TileCoord3) (tilekit.Blob, bool, error) {
	blob, ok, err := v.source.TileData(ctx, coord)
	if err != nil || !ok {
		return tilekit.Blob{}, false, err
	}
	out, err := v.apply(blob)
	if err != nil {
		return tilekit.Blob{}, false, fmt.Errorf("pipeline: vectortiles_update_properties tile %v: %w", coord, err)
	}
	return out, true, nil
}

func (v *vectorUpdateOperation) BBoxTileStream(ctx context.Context, bbox tilekit.TileBBox) *tilekit.TileStream {
	src := v.source.BBoxTileStream(ctx, bbox)
	return src.FilterMapBlobParallel(ctx, 0, func(b tilekit.Blob) (tilekit.Blob, bool, error) {
		out, err := v.apply(b)
		if err != nil {
			log.Printf("pipeline: vectortiles_update_properties, dropping tile: %v", err)
			return tilekit.Blob{}, false, nil
		}
		return out, true, nil
	})
}

// apply decompresses, decodes, mutates properties, re-encodes, and
// compresses the result again with the source's compression, so the
// declared output compression stays that of the source.
func (v *vectorUpdateOperation) apply(b tilekit.Blob) (tilekit.Blob, error) {
	raw, err := tilekit.Decompress(b, v.params.Compression)
	if err != nil {
		return tilekit.Blob{}, err
	}
	vt, err := vectortile.Decode(raw.Bytes())
	if err != nil {
		return tilekit.Blob{}, err
	}

	for name, layer := range vt.Layers {
		if v.layerName != "" && name != v.layerName {
			continue
		}
		for _, feature := range layer.Features {
			v.updateFeature(feature)
		}
	}
	if v.removeEmptyProperties {
		vt.RemoveEmptyProperties()
	}

	encoded, err := vt.Encode()
	if err != nil {
		return tilekit.Blob{}, err
	}
	recompressed, err := tilekit.Compress(tilekit.NewBlob(encoded), v.params.Compression)
	if err != nil {
		return tilekit.Blob{}, err
	}
	return recompressed, nil
}

func (v *vectorUpdateOperation) updateFeature(feature *vectortile.Feature) {
	if feature.Properties == nil {
		log.Printf("pipeline: vectortiles_update_properties: feature missing property %q, dropping properties", v.idFieldTiles)
		feature.Properties = nil
		return
	}
	idValue, ok := feature.Properties.Get(v.idFieldTiles)
	if !ok {
		log.Printf("pipeline: vectortiles_update_properties: feature missing property %q, dropping properties", v.idFieldTiles)
		feature.Properties = nil
		return
	}
	update, ok := v.properties[idValue.String()]
	if !ok {
		log.Printf("pipeline: vectortiles_update_properties: no CSV row for id %q, dropping properties", idValue.String())
		feature.Properties = nil
		return
	}
	if v.replaceProperties {
		feature.Properties = update.Clone()
		return
	}
	feature.Properties.Update(update)
}

func (v *vectorUpdateOperation) OverrideCompression(c tilekit.TileCompression) error {
	return tilekit.ErrCompressionNotOverridable
}
