package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// ResponseKind tags which shape a backend response resolved to.
type ResponseKind int

const (
	// KindResult is a successful response; Collection may still be nil or empty.
	KindResult ResponseKind = iota
	// KindError is a response carrying a truthy "error" member.
	KindError
)

// QueryMetadata is display-only information about the last query. Zero or
// empty fields mean the backend did not report them.
type QueryMetadata struct {
	QueryTimeSeconds float64
	DataScanned      string
	AccidentCount    int
}

// Response is a decoded backend answer.
type Response struct {
	Kind       ResponseKind
	Error      string
	Collection *geojson.FeatureCollection
	Meta       QueryMetadata
}

// FeatureCount returns the number of features, zero when no collection was found.
func (r Response) FeatureCount() int {
	if r.Collection == nil {
		return 0
	}
	return len(r.Collection.Features)
}

// ResultBody is the success payload written by the backend.
type ResultBody struct {
	GeoJSON       *geojson.FeatureCollection `json:"geojson"`
	Query         string                     `json:"query,omitempty"`
	QueryTime     float64                    `json:"query_time"`
	DataScanned   any                        `json:"data_scanned"`
	AccidentCount int                        `json:"accident_count"`
}

// ErrorBody is the failure payload written by the backend.
type ErrorBody struct {
	Error string `json:"error"`
}

type rawResponse struct {
	Error         json.RawMessage `json:"error"`
	GeoJSON       json.RawMessage `json:"geojson"`
	Features      json.RawMessage `json:"features"`
	QueryTime     json.RawMessage `json:"query_time"`
	DataScanned   json.RawMessage `json:"data_scanned"`
	AccidentCount json.RawMessage `json:"accident_count"`
}

// rawFeature is a feature as the backend may send it: the "type" member is
// optional and geometry or properties may be null.
type rawFeature struct {
	ID         any                `json:"id,omitempty"`
	Geometry   json.RawMessage    `json:"geometry"`
	Properties geojson.Properties `json:"properties"`
}

// DecodeResponse resolves a backend body into a Response. A collection is taken
// from the "geojson" member when present, else from a top-level "features"
// member. Collection is nil when neither holds any feature. Feature "type"
// members are not required. Malformed JSON is an error.
func DecodeResponse(body []byte) (Response, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	if truthy(raw.Error) {
		return Response{Kind: KindError, Error: rawText(raw.Error)}, nil
	}

	resp := Response{Kind: KindResult}

	switch {
	case truthy(raw.GeoJSON):
		var member struct {
			Features json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(raw.GeoJSON, &member); err != nil {
			return Response{}, fmt.Errorf("decode geojson member: %w", err)
		}
		fc, err := decodeFeatures(member.Features)
		if err != nil {
			return Response{}, fmt.Errorf("decode geojson member: %w", err)
		}
		resp.Collection = fc
	case truthy(raw.Features):
		fc, err := decodeFeatures(raw.Features)
		if err != nil {
			return Response{}, fmt.Errorf("decode features: %w", err)
		}
		resp.Collection = fc
	}

	if f, err := strconv.ParseFloat(rawText(raw.QueryTime), 64); err == nil {
		resp.Meta.QueryTimeSeconds = f
	}
	resp.Meta.DataScanned = rawText(raw.DataScanned)
	if n, err := strconv.ParseFloat(rawText(raw.AccidentCount), 64); err == nil {
		resp.Meta.AccidentCount = int(n)
	}
	return resp, nil
}

// decodeFeatures builds a collection from a raw "features" array. Missing,
// null and empty arrays yield nil.
func decodeFeatures(v json.RawMessage) (*geojson.FeatureCollection, error) {
	if !truthy(v) {
		return nil, nil
	}
	var items []rawFeature
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	fc := geojson.NewFeatureCollection()
	for i, item := range items {
		f := &geojson.Feature{
			ID:         item.ID,
			Type:       "Feature",
			Properties: item.Properties,
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		if truthy(item.Geometry) {
			var g geojson.Geometry
			if err := json.Unmarshal(item.Geometry, &g); err != nil {
				return nil, fmt.Errorf("feature %d geometry: %w", i, err)
			}
			f.Geometry = g.Geometry()
		}
		fc.Append(f)
	}
	return fc, nil
}

// truthy mirrors JavaScript truthiness for a raw JSON value.
func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	switch string(v) {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil && f == 0 {
		return false
	}
	return true
}

// rawText returns a JSON scalar as display text: strings unquoted, everything
// else verbatim. Null and falsy values yield "".
func rawText(v json.RawMessage) string {
	if !truthy(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(v))
}
