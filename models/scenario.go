package models

import "time"

// ScenarioType is the kind of conflict a scenario models.
type ScenarioType string

const (
	ScenarioConventional   ScenarioType = "conventional"
	ScenarioAsymmetric     ScenarioType = "asymmetric"
	ScenarioCyber          ScenarioType = "cyber"
	ScenarioCBRN           ScenarioType = "cbrn"
	ScenarioTerrorResponse ScenarioType = "terror_response"
	ScenarioHybrid         ScenarioType = "hybrid"
)

// ScenarioStatus is the lifecycle state of a scenario.
type ScenarioStatus string

const (
	ScenarioDraft     ScenarioStatus = "draft"
	ScenarioActive    ScenarioStatus = "active"
	ScenarioCompleted ScenarioStatus = "completed"
	ScenarioArchived  ScenarioStatus = "archived"
)

// ScenarioParticipant is a country taking a side in a scenario.
type ScenarioParticipant struct {
	CountryID   string           `json:"country_id"`
	CountryName string           `json:"country_name"`
	Role        string           `json:"role"` // red, blue, neutral
	Forces      map[string]int64 `json:"forces,omitempty"`
}

// ScenarioObjective is a goal tracked within a scenario.
type ScenarioObjective struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// TimelineEvent is a point on a scenario's timeline.
type TimelineEvent struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

// MapLayer is a map overlay configured for a scenario.
type MapLayer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Visible   bool    `json:"visible"`
	Opacity   float64 `json:"opacity"`
	SourceURL string  `json:"source_url,omitempty"`
}

// MapAnnotation is a drawn feature. Coordinates are either a point or a
// list of points depending on Type, so they stay opaque here.
type MapAnnotation struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Coordinates any            `json:"coordinates"`
	Properties  map[string]any `json:"properties"`
	Style       map[string]any `json:"style,omitempty"`
}

// Scenario is a versioned what-if analysis within a project.
type Scenario struct {
	ID               string                `json:"id"`
	ProjectID        string                `json:"project_id"`
	CreatorID        string                `json:"creator_id"`
	Name             string                `json:"name"`
	Description      string                `json:"description,omitempty"`
	ScenarioType     ScenarioType          `json:"scenario_type"`
	Status           ScenarioStatus        `json:"status"`
	BoundsNorth      *float64              `json:"bounds_north,omitempty"`
	BoundsSouth      *float64              `json:"bounds_south,omitempty"`
	BoundsEast       *float64              `json:"bounds_east,omitempty"`
	BoundsWest       *float64              `json:"bounds_west,omitempty"`
	CenterLat        *float64              `json:"center_lat,omitempty"`
	CenterLng        *float64              `json:"center_lng,omitempty"`
	ZoomLevel        *float64              `json:"zoom_level,omitempty"`
	Participants     []ScenarioParticipant `json:"participants,omitempty"`
	Forces           map[string]any        `json:"forces,omitempty"`
	Objectives       []ScenarioObjective   `json:"objectives,omitempty"`
	Timeline         []TimelineEvent       `json:"timeline,omitempty"`
	MapLayers        []MapLayer            `json:"map_layers,omitempty"`
	Annotations      []MapAnnotation       `json:"annotations,omitempty"`
	SimulationConfig map[string]any        `json:"simulation_config,omitempty"`
	Results          map[string]any        `json:"results,omitempty"`
	Version          int                   `json:"version"`
	ParentScenarioID string                `json:"parent_scenario_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// ScenarioCreate is the body for POST and PATCH on scenarios. ProjectID is
// filled in by the gateway from the URL.
type ScenarioCreate struct {
	Name         string                `json:"name,omitempty"`
	Description  string                `json:"description,omitempty"`
	ScenarioType ScenarioType          `json:"scenario_type,omitempty"`
	ProjectID    string                `json:"project_id,omitempty"`
	BoundsNorth  *float64              `json:"bounds_north,omitempty"`
	BoundsSouth  *float64              `json:"bounds_south,omitempty"`
	BoundsEast   *float64              `json:"bounds_east,omitempty"`
	BoundsWest   *float64              `json:"bounds_west,omitempty"`
	CenterLat    *float64              `json:"center_lat,omitempty"`
	CenterLng    *float64              `json:"center_lng,omitempty"`
	ZoomLevel    *float64              `json:"zoom_level,omitempty"`
	Participants []ScenarioParticipant `json:"participants,omitempty"`
	Forces       map[string]any        `json:"forces,omitempty"`
	Objectives   []ScenarioObjective   `json:"objectives,omitempty"`
}

// PageQuery is the skip/limit pair shared by paged list endpoints.
type PageQuery struct {
	Skip  int
	Limit int
}
