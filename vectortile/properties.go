// Package vectortile provides a mutable in-memory model of a Mapbox vector
// tile, built on top of github.com/paulmach/orb/encoding/mvt for the wire
// codec. See spec.md section 4.11 (vectortiles_update_properties).
package vectortile

import (
	"fmt"
	"strconv"
)

// GeoValue is a single property value: a string, a float64, a bool, or null.
// It mirrors the value shapes orb's mvt codec round-trips through a
// feature's Tags map.
type GeoValue struct {
	v interface{}
}

// NullGeoValue is the absence of a value.
var NullGeoValue = GeoValue{}

func NewGeoValueString(s string) GeoValue { return GeoValue{v: s} }
func NewGeoValueFloat(f float64) GeoValue { return GeoValue{v: f} }
func NewGeoValueBool(b bool) GeoValue     { return GeoValue{v: b} }

func geoValueFromInterface(v interface{}) GeoValue {
	return GeoValue{v: v}
}

// IsNull reports whether the value is absent.
func (v GeoValue) IsNull() bool { return v.v == nil }

// Raw returns the underlying value as stored by the mvt codec.
func (v GeoValue) Raw() interface{} { return v.v }

// String renders the value the way id_field comparisons and CSV joins need:
// canonical, locale-independent, and stable across encode/decode cycles.
func (v GeoValue) String() string {
	switch t := v.v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// GeoProperties is an insertion-ordered map from key to GeoValue. Keys,
// Clone and Update follow insertion order; ToMap drops it, so the order has
// no effect on the encoded tile bytes.
type GeoProperties struct {
	keys   []string
	values map[string]GeoValue
}

// NewGeoProperties returns an empty, insertion-ordered property set.
func NewGeoProperties() *GeoProperties {
	return &GeoProperties{values: map[string]GeoValue{}}
}

// Set inserts key with value v, or overwrites it in place if already present.
func (p *GeoProperties) Set(key string, v GeoValue) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Get returns the value for key and whether it is present.
func (p *GeoProperties) Get(key string) (GeoValue, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key if present.
func (p *GeoProperties) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the property keys in insertion order.
func (p *GeoProperties) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of properties.
func (p *GeoProperties) Len() int { return len(p.keys) }

// Update merges other into p, inserting new keys and overwriting existing
// ones in place; it does not touch keys p already has that other lacks.
// This implements replace_properties=false in vectortiles_update_properties.
func (p *GeoProperties) Update(other *GeoProperties) {
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// Clone deep-copies the property set.
func (p *GeoProperties) Clone() *GeoProperties {
	np := NewGeoProperties()
	for _, k := range p.keys {
		np.Set(k, p.values[k])
	}
	return np
}

// ToMap returns a plain map suitable for handing to the mvt encoder. Order
// is lost at this boundary; the mvt wire format does not preserve it either.
func (p *GeoProperties) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k].Raw()
	}
	return out
}
