package store

import (
	"slices"
	"sync"

	"github.com/apexdefense/agd/models"
)

// CountriesLayer is the layer shown when the map first opens.
const CountriesLayer = "countries"

// MapState is a point-in-time copy of the map store.
type MapState struct {
	View           models.MapViewState
	SelectedMarker string
	ActiveLayers   []string
}

// Map holds the camera, the selected marker and the visible layers.
type Map struct {
	mu    sync.Mutex
	state MapState
	subs  listeners[MapState]
}

// DefaultMapView is the camera position of a fresh map.
func DefaultMapView() models.MapViewState {
	return models.MapViewState{Latitude: 20, Longitude: 0, Zoom: 2}
}

// NewMap returns a map store at the default view with the countries layer on.
func NewMap() *Map {
	return &Map{state: MapState{
		View:         DefaultMapView(),
		ActiveLayers: []string{CountriesLayer},
	}}
}

// Reset returns to the default view with the countries layer on.
func (m *Map) Reset() {
	m.update(func(s *MapState) {
		*s = MapState{View: DefaultMapView(), ActiveLayers: []string{CountriesLayer}}
	})
}

// SetView moves the camera.
func (m *Map) SetView(v models.MapViewState) {
	m.update(func(s *MapState) { s.View = v })
}

// SelectMarker selects a marker. An empty id clears the selection.
func (m *Map) SelectMarker(id string) {
	m.update(func(s *MapState) { s.SelectedMarker = id })
}

// ToggleLayer shows a hidden layer or hides a visible one.
func (m *Map) ToggleLayer(id string) {
	m.update(func(s *MapState) {
		if i := slices.Index(s.ActiveLayers, id); i >= 0 {
			s.ActiveLayers = slices.Delete(s.ActiveLayers, i, i+1)
			return
		}
		s.ActiveLayers = append(s.ActiveLayers, id)
	})
}

// SetActiveLayers replaces the visible layers.
func (m *Map) SetActiveLayers(ids []string) {
	m.update(func(s *MapState) { s.ActiveLayers = slices.Clone(ids) })
}

// Snapshot returns the full state.
func (m *Map) Snapshot() MapState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

// Subscribe registers fn to receive the state after every transition.
func (m *Map) Subscribe(fn func(MapState)) (unsubscribe func()) {
	return m.subs.subscribe(fn)
}

func (m *Map) update(fn func(*MapState)) {
	m.mu.Lock()
	fn(&m.state)
	state := m.copyLocked()
	m.mu.Unlock()
	m.subs.notify(state)
}

func (m *Map) copyLocked() MapState {
	s := m.state
	s.ActiveLayers = slices.Clone(m.state.ActiveLayers)
	if s.ActiveLayers == nil {
		s.ActiveLayers = []string{}
	}
	return s
}
