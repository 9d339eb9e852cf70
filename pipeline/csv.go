package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tile-kit/tilekit/vectortile"
)

// loadCSVProperties reads a CSV file into a lookup keyed by the stringified
// value of the keyColumn, per spec.md section 4.7. The key column is
// stripped from the resulting properties unless keepKeyColumn is set.
// Duplicate keys: the last row wins, with a warning logged. A missing key
// column is a build-time error.
//
// The CSV reader is the external collaborator named in spec.md section 6
// ("CSV reader returning Vec<GeoProperties>"); encoding/csv is used here
// directly rather than through a third-party CSV library because the pack
// offers no mapping-file or dataframe CSV library suited to a flat
// header-row+key-column join like this one.
func loadCSVProperties(path, keyColumn string, keepKeyColumn bool) (map[string]*vectortile.GeoProperties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: opening CSV %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading CSV header %q: %w", path, err)
	}

	keyIdx := -1
	for i, h := range header {
		if h == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx == -1 {
		return nil, fmt.Errorf("pipeline: CSV %q has no column %q", path, keyColumn)
	}

	out := map[string]*vectortile.GeoProperties{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline: reading CSV %q: %w", path, err)
		}
		if keyIdx >= len(row) {
			continue
		}
		key := row[keyIdx]
		if _, exists := out[key]; exists {
			log.Printf("pipeline: CSV %q: duplicate key %q, last row wins", path, key)
		}
		props := vectortile.NewGeoProperties()
		for i, h := range header {
			if i == keyIdx && !keepKeyColumn {
				continue
			}
			if i >= len(row) {
				continue
			}
			props.Set(h, vectortile.NewGeoValueString(row[i]))
		}
		out[key] = props
	}
	return out, nil
}
