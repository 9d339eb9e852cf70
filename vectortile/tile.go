package vectortile

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
)

// Feature is a single geometry plus its property set. Geometry is carried
// in the tile's own pixel/extent space, exactly as produced by mvt.Unmarshal;
// vectortiles_update_properties never touches geometry, so no reprojection
// is needed to round-trip a tile through this package.
type Feature struct {
	ID         *uint64
	Geometry   orb.Geometry
	Properties *GeoProperties
}

// Layer is a named group of features sharing an extent and MVT version.
type Layer struct {
	Name     string
	Version  uint32
	Extent   uint32
	Features []*Feature
}

// VectorTile is a decoded Mapbox vector tile: an unordered set of named
// layers. Layer order is not meaningful in the MVT wire format.
type VectorTile struct {
	Layers map[string]*Layer
}

// Decode parses MVT-encoded, already-decompressed tile bytes.
func Decode(data []byte) (*VectorTile, error) {
	rawLayers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("vectortile: decode: %w", err)
	}

	vt := &VectorTile{Layers: make(map[string]*Layer, len(rawLayers))}
	for name, rawLayer := range rawLayers {
		layer := &Layer{
			Name:     name,
			Version:  rawLayer.Version,
			Extent:   rawLayer.Extent,
			Features: make([]*Feature, 0, len(rawLayer.Features)),
		}
		for _, rf := range rawLayer.Features {
			feature := &Feature{ID: rf.ID, Geometry: rf.Geometry}
			if len(rf.Tags) > 0 {
				props := NewGeoProperties()
				for k, v := range rf.Tags {
					props.Set(k, geoValueFromInterface(v))
				}
				feature.Properties = props
			}
			layer.Features = append(layer.Features, feature)
		}
		vt.Layers[name] = layer
	}
	return vt, nil
}

// Encode serializes the tile back to MVT wire bytes.
func (vt *VectorTile) Encode() ([]byte, error) {
	rawLayers := make(mvt.Layers, len(vt.Layers))
	for name, layer := range vt.Layers {
		rawLayer := &mvt.Layer{
			Name:     name,
			Version:  layer.Version,
			Extent:   layer.Extent,
			Features: make([]*mvt.Feature, 0, len(layer.Features)),
		}
		for _, f := range layer.Features {
			rf := &mvt.Feature{ID: f.ID, Geometry: f.Geometry}
			if f.Properties != nil {
				rf.Tags = f.Properties.ToMap()
			}
			rawLayer.Features = append(rawLayer.Features, rf)
		}
		rawLayers[name] = rawLayer
	}
	data, err := mvt.Marshal(rawLayers)
	if err != nil {
		return nil, fmt.Errorf("vectortile: encode: %w", err)
	}
	return data, nil
}

// RemoveEmptyProperties drops every feature across every layer whose
// property set is absent or empty, per the remove_empty_properties option
// of vectortiles_update_properties.
func (vt *VectorTile) RemoveEmptyProperties() {
	for _, layer := range vt.Layers {
		kept := layer.Features[:0]
		for _, f := range layer.Features {
			if f.Properties != nil && f.Properties.Len() > 0 {
				kept = append(kept, f)
			}
		}
		layer.Features = kept
	}
}
