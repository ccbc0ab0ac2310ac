package mapview

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/paulmach/orb"
)

// Style is an in-memory Map. It enforces the engine's rules: layer and source
// IDs are unique, a layer's source must exist, and a source cannot be removed
// while layers still use it.
type Style struct {
	mu      sync.Mutex
	url     string
	center  orb.Point
	zoom    float64
	sources map[string]Source
	layers  []Layer
}

// NewStyle creates a style based on styleURL, centred at center.
func NewStyle(styleURL string, center orb.Point, zoom float64) *Style {
	return &Style{
		url:     styleURL,
		center:  center,
		zoom:    zoom,
		sources: make(map[string]Source),
	}
}

func (s *Style) indexOf(id string) int {
	return slices.IndexFunc(s.layers, func(l Layer) bool { return l.ID == id })
}

// HasLayer reports whether a layer with id exists.
func (s *Style) HasLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// RemoveLayer deletes a layer. Removing a missing layer is an error.
func (s *Style) RemoveLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("layer %q does not exist", id)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	return nil
}

// HasSource reports whether a source with id exists.
func (s *Style) HasSource(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sources[id]
	return ok
}

// RemoveSource deletes a source. It fails when the source is missing or a
// layer still references it.
func (s *Style) RemoveSource(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("source %q does not exist", id)
	}
	for _, l := range s.layers {
		if l.Source == id {
			return fmt.Errorf("source %q is in use by layer %q", id, l.ID)
		}
	}
	delete(s.sources, id)
	return nil
}

// AddSource registers src under id. Ids must be unique.
func (s *Style) AddSource(id string, src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[id]; ok {
		return fmt.Errorf("source %q already exists", id)
	}
	s.sources[id] = src
	return nil
}

// AddLayer appends l on top of the existing layers. Its id must be unique and
// its source must already exist.
func (s *Style) AddLayer(l Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(l.ID) >= 0 {
		return fmt.Errorf("layer %q already exists", l.ID)
	}
	if _, ok := s.sources[l.Source]; !ok {
		return fmt.Errorf("layer %q references missing source %q", l.ID, l.Source)
	}
	s.layers = append(s.layers, l)
	return nil
}

// SetPaintProperty sets one paint value on an existing layer.
func (s *Style) SetPaintProperty(layerID, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(layerID)
	if i < 0 {
		return fmt.Errorf("layer %q does not exist", layerID)
	}
	paint := make(map[string]any, len(s.layers[i].Paint)+1)
	for k, v := range s.layers[i].Paint {
		paint[k] = v
	}
	paint[name] = value
	s.layers[i].Paint = paint
	return nil
}

// PaintProperty returns a layer's paint value.
func (s *Style) PaintProperty(layerID, name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(layerID)
	if i < 0 {
		return nil, false
	}
	v, ok := s.layers[i].Paint[name]
	return v, ok
}

// Zoom returns the camera zoom.
func (s *Style) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetZoom moves the camera without changing its centre.
func (s *Style) SetZoom(z float64) {
	s.mu.Lock()
	s.zoom = z
	s.mu.Unlock()
}

// FlyTo moves the camera to center at zoom. The move is immediate.
func (s *Style) FlyTo(center orb.Point, zoom float64) {
	s.mu.Lock()
	s.center, s.zoom = center, zoom
	s.mu.Unlock()
}

// Center returns the camera centre.
func (s *Style) Center() orb.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// SetStyle swaps the base style and drops all sources and layers. There is no
// tile loading, so the style is idle as soon as the swap completes.
func (s *Style) SetStyle(styleURL string, onIdle func()) {
	s.mu.Lock()
	s.url = styleURL
	s.sources = make(map[string]Source)
	s.layers = nil
	s.mu.Unlock()

	if onIdle != nil {
		onIdle()
	}
}

// URL returns the current base style.
func (s *Style) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// LayerIDs returns the layer IDs in draw order.
func (s *Style) LayerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.ID
	}
	return ids
}

// Source returns a source by ID.
func (s *Style) Source(id string) (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	return src, ok
}

type styleDocument struct {
	Version  int               `json:"version"`
	Metadata map[string]any    `json:"metadata"`
	Center   orb.Point         `json:"center"`
	Zoom     float64           `json:"zoom"`
	Sources  map[string]Source `json:"sources"`
	Layers   []Layer           `json:"layers"`
}

// Document serializes the style as a version 8 style document. The base style
// is referenced in metadata rather than inlined.
func (s *Style) Document() ([]byte, error) {
	s.mu.Lock()
	doc := styleDocument{
		Version:  8,
		Metadata: map[string]any{"accident-map:base-style": s.url},
		Center:   s.center,
		Zoom:     s.zoom,
		Sources:  make(map[string]Source, len(s.sources)),
		Layers:   slices.Clone(s.layers),
	}
	for id, src := range s.sources {
		doc.Sources[id] = src
	}
	s.mu.Unlock()

	if doc.Layers == nil {
		doc.Layers = []Layer{}
	}
	return json.MarshalIndent(doc, "", "  ")
}
